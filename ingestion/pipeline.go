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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/indexit/cluster"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/journal"
	"github.com/poiesic/indexit/rollover"
	"github.com/poiesic/indexit/source"
)

// Pipeline drives a full load: it creates a fresh index generation, pulls
// record groups from the source, formats and dispatches them, and on release
// runs promotes the generation to the stable alias.
type Pipeline struct {
	client      cluster.Client
	source      source.Source
	manager     *rollover.Manager
	idColumn    string
	mode        core.RunMode
	config      *Config
	journal     journal.Journal
	transformer Transformer
	extra       map[string]any
	dispatcher  *Dispatcher
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig replaces the default sizing configuration.
func WithConfig(cfg *Config) Option {
	return func(p *Pipeline) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.config = cfg
		return nil
	}
}

// WithPipelineJournal records rejected documents in j for manual remediation.
func WithPipelineJournal(j journal.Journal) Option {
	return func(p *Pipeline) error {
		if j != nil {
			p.journal = j
		}
		return nil
	}
}

// WithBatchTransform installs a batch transform applied to every dispatched
// chunk; extra is handed through on each call.
func WithBatchTransform(t Transformer, extra map[string]any) Option {
	return func(p *Pipeline) error {
		if t != nil {
			p.transformer = t
			p.extra = extra
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a load pipeline.
func NewPipeline(
	client cluster.Client,
	src source.Source,
	manager *rollover.Manager,
	idColumn string,
	mode core.RunMode,
	opts ...Option,
) (*Pipeline, error) {
	if client == nil {
		return nil, ErrClusterClientRequired
	}
	if src == nil {
		return nil, ErrSourceRequired
	}
	if manager == nil {
		return nil, ErrManagerRequired
	}
	if idColumn == "" {
		return nil, ErrIdentifierColumnRequired
	}
	if !mode.Valid() {
		return nil, core.ErrInvalidRunMode
	}

	p := &Pipeline{
		client:      client,
		source:      src,
		manager:     manager,
		idColumn:    idColumn,
		mode:        mode,
		config:      DefaultConfig(),
		journal:     journal.Nop{},
		transformer: noopTransformer{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	executor, err := NewExecutor(p.client,
		WithJournal(p.journal),
		WithTransportRetry(p.config.TransportRetries, p.config.TransportRetryDelay),
		WithExecutorLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}

	dispatcher, err := NewDispatcher(executor, p.config.ChunkSize, p.config.MaxInFlight,
		WithTransform(p.transformer, p.extra),
		WithDispatcherLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}
	p.dispatcher = dispatcher

	return p, nil
}

// Stats summarizes a completed run.
type Stats struct {
	// Generation is the name of the index generation this run loaded.
	Generation string

	// Consumed is how many records were pulled from the source.
	Consumed int

	// Dropped is how many records the formatter rejected before the write path.
	Dropped int

	// Indexed is how many documents the cluster accepted.
	Indexed int
}

// Run executes the load. It processes the entire source (or up to the
// configured record cap); data-level problems are logged and skipped, and
// only a structural source failure aborts the run. On release runs the new
// generation is promoted to the alias after the source is drained; finalize
// failures propagate to the caller.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	generation, err := p.manager.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating generation: %w", err)
	}
	p.logger.Info("created generation",
		"generation", generation, "mode", p.mode.String())

	formatter := NewFormatter(generation, p.idColumn, p.logger)
	stats := &Stats{Generation: generation}

	for {
		// Pull one chunk's worth of records per in-flight slot so each
		// dispatched group fans out into enough chunks to fill the cap.
		max := p.config.ChunkSize * p.config.MaxInFlight
		if p.config.MaxRecords > 0 {
			remaining := p.config.MaxRecords - stats.Consumed
			if remaining <= 0 {
				break
			}
			max = min(max, remaining)
		}

		records, err := p.source.Next(ctx, max)
		if err != nil && !errors.Is(err, io.EOF) {
			// A corrupt source cannot be trusted to produce a complete
			// index. This is the one fatal failure class.
			return stats, fmt.Errorf("reading source: %w", err)
		}

		if len(records) > 0 {
			stats.Consumed += len(records)
			actions := formatter.FormatBatch(records)
			accepted := p.dispatcher.Dispatch(ctx, actions)
			stats.Indexed += accepted
			p.logger.Debug("dispatched group",
				"records", len(records), "actions", len(actions), "accepted", accepted)
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	stats.Dropped = formatter.Dropped()

	if p.mode == core.RunModeRelease {
		if err := p.manager.Finalize(ctx, generation); err != nil {
			return stats, fmt.Errorf("finalizing generation %s: %w", generation, err)
		}
	}

	p.logger.Info("load complete",
		"generation", generation,
		"mode", p.mode.String(),
		"consumed", stats.Consumed,
		"indexed", stats.Indexed,
		"dropped", stats.Dropped)

	return stats, nil
}

// Release releases the dispatcher's worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.dispatcher != nil {
		p.dispatcher.Release()
	}
}
