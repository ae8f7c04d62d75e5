package journal

import "errors"

var (
	// ErrSerializationFailed indicates an entry could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")
)
