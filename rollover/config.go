package rollover

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables recognized by ConfigFromEnv.
const (
	EnvReplicas        = "INDEXIT_REPLICAS"
	EnvRefreshInterval = "INDEXIT_REFRESH_INTERVAL"
)

// Config holds generation naming and post-release index settings.
type Config struct {
	// Alias is the stable name readers resolve. Required.
	Alias string

	// Version is the pipeline version embedded in generation names. It is
	// injected explicitly rather than read from build metadata, so index
	// naming never depends on how the binary was produced. Required.
	Version string

	// Replicas is the replica count restored when a generation is
	// finalized. Default: 3
	Replicas int

	// RefreshInterval is the refresh interval restored when a generation
	// is finalized. Default: "1s"
	RefreshInterval string

	// Mappings is an optional document mapping applied at generation
	// creation.
	Mappings map[string]any

	// Settings are optional extra index settings layered over the
	// indexing-optimized creation settings.
	Settings map[string]any
}

// NewConfig creates a Config for the given alias and pipeline version with
// default post-release settings.
func NewConfig(alias, version string) *Config {
	return &Config{
		Alias:           alias,
		Version:         version,
		Replicas:        3,
		RefreshInterval: "1s",
	}
}

// ConfigFromEnv returns NewConfig overridden by any recognized environment
// variables that are set.
func ConfigFromEnv(alias, version string) (*Config, error) {
	cfg := NewConfig(alias, version)

	if raw := os.Getenv(EnvReplicas); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvReplicas, raw, err)
		}
		cfg.Replicas = n
	}
	if raw := os.Getenv(EnvRefreshInterval); raw != "" {
		cfg.RefreshInterval = raw
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Alias == "" {
		return ErrAliasRequired
	}
	if c.Version == "" {
		return ErrVersionRequired
	}
	if c.Replicas < 0 {
		return fmt.Errorf("replicas must not be negative, got %d", c.Replicas)
	}
	if c.RefreshInterval == "" {
		return ErrRefreshIntervalRequired
	}
	return nil
}
