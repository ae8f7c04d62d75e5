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


package journal

import (
	"context"
	"time"

	"github.com/poiesic/indexit/core"
)

// Entry is one failed document write preserved for manual remediation.
type Entry struct {
	Index    string      `json:"index"`
	ID       string      `json:"id"`
	Status   int         `json:"status"`
	Reason   string      `json:"reason,omitempty"`
	Doc      core.Record `json:"doc"`
	FailedAt time.Time   `json:"failed_at"`
}

// Journal persists failed writes. Implementations must be safe for
// concurrent appends: the dispatcher may fail items from several in-flight
// chunks at once.
type Journal interface {
	// Append records one failed write. Appending the same (index, id) pair
	// twice keeps only the latest failure.
	Append(ctx context.Context, entry *Entry) error

	// ForEach visits every recorded failure. Iteration stops on the first
	// error from fn.
	ForEach(ctx context.Context, fn func(*Entry) error) error

	// Close releases the underlying store.
	Close() error
}

// Nop is a Journal that discards everything. It is the default when no
// journal is configured.
type Nop struct{}

var _ Journal = (*Nop)(nil)

func (Nop) Append(_ context.Context, _ *Entry) error              { return nil }
func (Nop) ForEach(_ context.Context, _ func(*Entry) error) error { return nil }
func (Nop) Close() error                                          { return nil }
