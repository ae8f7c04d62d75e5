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


package cluster

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// ItemError carries the cluster's error payload for one failed bulk item.
type ItemError struct {
	Type   string
	Reason string
}

// BulkItem is the outcome the cluster reports for one submitted WriteAction.
// Status is the HTTP-like status code for the individual document write;
// Error is nil for accepted items.
type BulkItem struct {
	ID     string
	Status int
	Error  *ItemError
}

// AliasBinding names one (index, alias) pair in an alias update.
type AliasBinding struct {
	Index string
	Alias string
}

// Client is the write and administration surface of the search cluster.
//
// Implementations must preserve submission order in Bulk responses: item k of
// the returned slice corresponds to the k-th submitted action, and the item
// count equals the action count. On the wire each action expands to an
// adjacent metadata/document line pair; that flattening stays below this
// interface so callers correlate by action position alone.
type Client interface {
	// CreateIndex creates an index. body carries mappings and settings and
	// may be nil for an empty index.
	CreateIndex(ctx context.Context, name string, body map[string]any) error

	// Bulk writes all actions in a single request and returns one outcome
	// per action, in submission order. A non-nil error means the whole
	// request failed at transport level and no per-item outcomes exist.
	Bulk(ctx context.Context, actions []core.WriteAction) ([]BulkItem, error)

	// IndexDocument writes a single document.
	IndexDocument(ctx context.Context, index, id string, doc core.Record) error

	// AliasedIndices returns the indices currently bound to the alias.
	// A missing alias yields an empty slice, not an error.
	AliasedIndices(ctx context.Context, alias string) ([]string, error)

	// UpdateAliases applies the add and remove bindings as one atomic
	// action set: readers of an alias never observe an intermediate state.
	UpdateAliases(ctx context.Context, add, remove []AliasBinding) error

	// UpdateSettings updates dynamic settings on an existing index.
	UpdateSettings(ctx context.Context, index string, settings map[string]any) error

	// IndexNames returns the indices whose names match the pattern.
	IndexNames(ctx context.Context, pattern string) ([]string, error)

	// DeleteIndices deletes the named indices.
	DeleteIndices(ctx context.Context, names ...string) error
}
