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


package source

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// Source produces records lazily from an underlying resource.
//
// Sources are finite and non-restartable: once Next reports io.EOF the
// source is drained and further calls return io.EOF again. Any other error
// is structural, meaning the resource cannot be trusted to produce a
// complete sequence and the caller must abort.
type Source interface {
	// Next returns up to max records. It may return records together with
	// io.EOF when the final group and end of input coincide.
	Next(ctx context.Context, max int) ([]core.Record, error)

	// Close releases the underlying resource.
	Close() error
}
