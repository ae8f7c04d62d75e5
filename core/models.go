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


package core

// Record is a single row of the input source: a mapping from column name to
// raw string value. Records are produced one per input row and are written to
// the cluster as documents without further schema interpretation.
type Record map[string]string

// Identifier returns the value of the identifier column and whether it is
// present and non-empty.
func (r Record) Identifier(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// IsHeaderEcho reports whether the record looks like a re-parsed header row:
// the identifier column's value equals the column's own name.
func (r Record) IsHeaderEcho(column string) bool {
	return r[column] == column
}

// OpIndex is the only bulk operation the loader issues. The cluster upserts
// by document id, which is what makes re-runs idempotent at document level.
const OpIndex = "index"

// ActionMeta describes how one document is written: the operation, the
// document id, and the concrete generation index it targets.
type ActionMeta struct {
	Op    string
	ID    string
	Index string
}

// WriteAction pairs action metadata with the document it writes. The two
// travel together into the bulk request body as adjacent lines, and the
// cluster's per-item response aligns one item per WriteAction.
type WriteAction struct {
	Meta ActionMeta
	Doc  Record
}

// RunMode selects what happens to the new generation once the source is
// exhausted.
type RunMode int

const (
	// RunModeStaging loads the generation but leaves the alias untouched,
	// so the result can be inspected before promotion.
	RunModeStaging RunMode = iota + 1

	// RunModeRelease promotes the generation to the stable alias after the
	// load completes.
	RunModeRelease
)

// String returns a human-readable name for the run mode.
func (m RunMode) String() string {
	switch m {
	case RunModeStaging:
		return "staging"
	case RunModeRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Valid reports whether the run mode is one of the defined values.
func (m RunMode) Valid() bool {
	return m == RunModeStaging || m == RunModeRelease
}
