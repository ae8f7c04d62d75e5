package rollover

import "errors"

var (
	// ErrClusterClientRequired is returned when a cluster client is not provided.
	ErrClusterClientRequired = errors.New("cluster client required")

	// ErrConfigRequired is returned when a configuration is not provided.
	ErrConfigRequired = errors.New("configuration required")

	// ErrAliasRequired is returned when the alias name is empty.
	ErrAliasRequired = errors.New("alias required")

	// ErrVersionRequired is returned when the pipeline version is empty.
	ErrVersionRequired = errors.New("pipeline version required")

	// ErrRefreshIntervalRequired is returned when the refresh interval is empty.
	ErrRefreshIntervalRequired = errors.New("refresh interval required")
)
