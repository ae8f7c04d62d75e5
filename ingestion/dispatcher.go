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
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/indexit/core"
)

// ChunkWriter issues one bulk call for a contiguous group of actions and
// reports how many documents the cluster accepted. Implementations must be
// safe for concurrent use; the dispatcher runs several writes at once.
type ChunkWriter interface {
	Write(ctx context.Context, actions []core.WriteAction) int
}

// Dispatcher splits a batch into chunks and fans them out to a ChunkWriter
// while capping how many bulk calls are outstanding.
//
// Admission is a rolling window, not barrier synchronization: while fewer
// than the cap are in flight a new chunk is submitted immediately; at the
// cap, submission blocks until any outstanding call completes. Chunks may
// therefore complete in any order.
type Dispatcher struct {
	writer      ChunkWriter
	transformer Transformer
	extra       map[string]any
	chunkSize   int
	pool        *ants.Pool // nil when the cap is 1
	logger      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTransform installs a batch transform that runs once per chunk, after
// grouping and before the bulk request is built. extra is handed to the
// transformer on every call.
func WithTransform(t Transformer, extra map[string]any) DispatcherOption {
	return func(d *Dispatcher) {
		if t != nil {
			d.transformer = t
			d.extra = extra
		}
	}
}

// WithDispatcherLogger sets a custom logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher sending chunks of at most chunkSize
// actions with at most maxInFlight concurrent bulk calls. A cap of 1
// degrades to inline sequential submission with no pool at all.
func NewDispatcher(writer ChunkWriter, chunkSize, maxInFlight int, opts ...DispatcherOption) (*Dispatcher, error) {
	if writer == nil {
		return nil, ErrChunkWriterRequired
	}
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if maxInFlight < 1 {
		return nil, ErrInvalidMaxInFlight
	}

	d := &Dispatcher{
		writer:      writer,
		transformer: noopTransformer{},
		chunkSize:   chunkSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "dispatcher")

	if maxInFlight > 1 {
		pool, err := ants.NewPool(maxInFlight)
		if err != nil {
			return nil, err
		}
		d.pool = pool
	}

	return d, nil
}

// Dispatch fans the batch out in chunks and blocks until every chunk's bulk
// call has completed, in whatever order. It returns the total number of
// documents the cluster accepted.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []core.WriteAction) int {
	if len(batch) == 0 {
		return 0
	}

	chunks := Chunks(batch, d.chunkSize)

	if d.pool == nil {
		written := 0
		for _, chunk := range chunks {
			written += d.writer.Write(ctx, d.transformer.Transform(chunk, d.extra))
		}
		return written
	}

	var wg sync.WaitGroup
	var written atomic.Int64
	for _, chunk := range chunks {
		wg.Add(1)
		// Submit blocks while every pool slot is occupied; that block is
		// the admission control point.
		err := d.pool.Submit(func() {
			defer wg.Done()
			actions := d.transformer.Transform(chunk, d.extra)
			written.Add(int64(d.writer.Write(ctx, actions)))
		})
		if err != nil {
			wg.Done()
			d.logger.Error("error submitting chunk", "actions", len(chunk), "err", err)
		}
	}
	wg.Wait()

	return int(written.Load())
}

// Release releases the worker pool. The dispatcher must not be used after
// calling Release.
func (d *Dispatcher) Release() {
	if d.pool != nil {
		d.pool.Release()
	}
}
