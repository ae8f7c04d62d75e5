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


package indexit

import (
	"context"
	"log/slog"

	"github.com/poiesic/indexit/cluster"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ingestion"
	"github.com/poiesic/indexit/journal"
	"github.com/poiesic/indexit/rollover"
	"github.com/poiesic/indexit/source"
)

// Loader bundles a full generational load behind a single constructor: a
// record source, the ingestion pipeline, and the rollover manager, all
// writing through one cluster client.
type Loader struct {
	manager  *rollover.Manager
	pipeline *ingestion.Pipeline
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	ingestion   *ingestion.Config
	journal     journal.Journal
	transformer ingestion.Transformer
	extra       map[string]any
	logger      *slog.Logger
}

// WithIngestionConfig replaces the default pipeline sizing.
func WithIngestionConfig(cfg *ingestion.Config) LoaderOption {
	return func(o *loaderOptions) {
		o.ingestion = cfg
	}
}

// WithJournal records rejected documents in j for manual remediation.
func WithJournal(j journal.Journal) LoaderOption {
	return func(o *loaderOptions) {
		o.journal = j
	}
}

// WithBatchTransform installs a batch transform applied to every dispatched
// chunk.
func WithBatchTransform(t ingestion.Transformer, extra map[string]any) LoaderOption {
	return func(o *loaderOptions) {
		o.transformer = t
		o.extra = extra
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// NewLoader wires a loader for one run.
func NewLoader(
	client cluster.Client,
	src source.Source,
	rolloverCfg *rollover.Config,
	idColumn string,
	mode core.RunMode,
	opts ...LoaderOption,
) (*Loader, error) {
	o := &loaderOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	manager, err := rollover.NewManager(client, rolloverCfg,
		rollover.WithManagerLogger(o.logger))
	if err != nil {
		return nil, err
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithLogger(o.logger),
	}
	if o.ingestion != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithConfig(o.ingestion))
	}
	if o.journal != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithPipelineJournal(o.journal))
	}
	if o.transformer != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithBatchTransform(o.transformer, o.extra))
	}

	pipeline, err := ingestion.NewPipeline(client, src, manager, idColumn, mode, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	return &Loader{
		manager:  manager,
		pipeline: pipeline,
		logger:   o.logger,
	}, nil
}

// Run executes the load and returns its statistics.
func (l *Loader) Run(ctx context.Context) (*ingestion.Stats, error) {
	return l.pipeline.Run(ctx)
}

// Generations lists every generation of the configured alias, oldest first.
func (l *Loader) Generations(ctx context.Context) ([]string, error) {
	return l.manager.Generations(ctx)
}

// Promote finalizes an already loaded generation: restores production
// settings, swaps the alias, and prunes old generations. Used to release a
// generation that was loaded in staging mode.
func (l *Loader) Promote(ctx context.Context, generation string) error {
	return l.manager.Finalize(ctx, generation)
}

// Release releases the pipeline's worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	l.pipeline.Release()
}
