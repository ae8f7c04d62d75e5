// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables recognized by FromEnv.
const (
	EnvChunkSize           = "INDEXIT_CHUNK_SIZE"
	EnvMaxInFlight         = "INDEXIT_MAX_IN_FLIGHT"
	EnvMaxRecords          = "INDEXIT_MAX_RECORDS"
	EnvTransportRetries    = "INDEXIT_TRANSPORT_RETRIES"
	EnvTransportRetryDelay = "INDEXIT_TRANSPORT_RETRY_DELAY"
)

// Config holds the sizing knobs for a load run.
type Config struct {
	// ChunkSize is the maximum number of write actions per bulk request.
	// Default: 10000
	ChunkSize int

	// MaxInFlight is the maximum number of concurrently outstanding bulk
	// requests. 1 degrades to strict sequential submission.
	// Default: 2
	MaxInFlight int

	// MaxRecords caps how many records are consumed from the source.
	// 0 means the whole source.
	MaxRecords int

	// TransportRetries is the number of attempts for a bulk request that
	// fails at transport level. The default of 1 means no retry: the group
	// is logged and given up, trading completeness for throughput. Raise it
	// to opt into backoff-retry on transport failures.
	TransportRetries int

	// TransportRetryDelay is the base delay for exponential backoff between
	// transport retry attempts.
	TransportRetryDelay time.Duration
}

// DefaultConfig returns a Config with the stock sizing.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:           10000,
		MaxInFlight:         2,
		TransportRetries:    1,
		TransportRetryDelay: 1 * time.Second,
	}
}

// FromEnv returns DefaultConfig overridden by any recognized environment
// variables that are set.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if err := intFromEnv(EnvChunkSize, &cfg.ChunkSize); err != nil {
		return nil, err
	}
	if err := intFromEnv(EnvMaxInFlight, &cfg.MaxInFlight); err != nil {
		return nil, err
	}
	if err := intFromEnv(EnvMaxRecords, &cfg.MaxRecords); err != nil {
		return nil, err
	}
	if err := intFromEnv(EnvTransportRetries, &cfg.TransportRetries); err != nil {
		return nil, err
	}
	if raw := os.Getenv(EnvTransportRetryDelay); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvTransportRetryDelay, raw, err)
		}
		cfg.TransportRetryDelay = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.MaxInFlight < 1 {
		return ErrInvalidMaxInFlight
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("max records must not be negative, got %d", c.MaxRecords)
	}
	if c.TransportRetries < 1 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

func intFromEnv(name string, out *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	*out = v
	return nil
}
