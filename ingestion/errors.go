package ingestion

import "errors"

var (
	// ErrClusterClientRequired is returned when a cluster client is not provided.
	ErrClusterClientRequired = errors.New("cluster client required")

	// ErrSourceRequired is returned when a record source is not provided.
	ErrSourceRequired = errors.New("record source required")

	// ErrManagerRequired is returned when a generation manager is not provided.
	ErrManagerRequired = errors.New("generation manager required")

	// ErrIdentifierColumnRequired is returned when no identifier column is configured.
	ErrIdentifierColumnRequired = errors.New("identifier column required")

	// ErrChunkWriterRequired is returned when a chunk writer is not provided.
	ErrChunkWriterRequired = errors.New("chunk writer required")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidMaxInFlight is returned when the in-flight cap is below 1.
	ErrInvalidMaxInFlight = errors.New("max in-flight requests must be at least 1")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
