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
	"log/slog"

	"github.com/poiesic/indexit/core"
)

// Transformer rewrites a formed group of write actions before the bulk
// request is built. It receives the whole group rather than single records,
// so one-to-many and batch-aware transforms (derived documents, cross-record
// enrichment) are possible. extra carries caller-supplied context through to
// every invocation.
type Transformer interface {
	Transform(actions []core.WriteAction, extra map[string]any) []core.WriteAction
}

// noopTransformer returns every group unchanged.
type noopTransformer struct{}

var _ Transformer = (*noopTransformer)(nil)

func (noopTransformer) Transform(actions []core.WriteAction, _ map[string]any) []core.WriteAction {
	return actions
}

// Formatter converts raw records into write actions targeting one index
// generation, dropping rows that cannot be written.
//
// Drop rules, in order: a record whose identifier column is absent or empty
// is logged at error level with its row index and dropped; a record whose
// identifier value equals the column's own name is a re-parsed header row
// and is dropped silently.
type Formatter struct {
	index    string
	idColumn string
	logger   *slog.Logger
	row      int
	dropped  int
}

// NewFormatter creates a formatter emitting actions for the given generation
// index, keyed by the identifier column.
func NewFormatter(index, idColumn string, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		index:    index,
		idColumn: idColumn,
		logger:   logger.With("component", "formatter"),
	}
}

// Format returns the write action for one record, or false if the record is
// dropped.
func (f *Formatter) Format(record core.Record) (core.WriteAction, bool) {
	f.row++

	id, ok := record.Identifier(f.idColumn)
	if !ok {
		f.dropped++
		f.logger.Error("dropping record without identifier",
			"row", f.row, "column", f.idColumn, "record", map[string]string(record))
		return core.WriteAction{}, false
	}

	// Header row echoed back as data. Silent drop.
	if record.IsHeaderEcho(f.idColumn) {
		f.dropped++
		return core.WriteAction{}, false
	}

	return core.WriteAction{
		Meta: core.ActionMeta{Op: core.OpIndex, ID: id, Index: f.index},
		Doc:  record,
	}, true
}

// FormatBatch converts a group of records, keeping input order among the
// survivors.
func (f *Formatter) FormatBatch(records []core.Record) []core.WriteAction {
	actions := make([]core.WriteAction, 0, len(records))
	for _, record := range records {
		if action, ok := f.Format(record); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// Dropped returns how many records have been dropped so far.
func (f *Formatter) Dropped() int {
	return f.dropped
}
