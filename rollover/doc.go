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


// Package rollover implements the generational index protocol that makes
// re-indexing atomic and reversible.
//
// Every load run writes into a brand-new index generation while readers
// keep using the stable alias. Promoting a generation swaps the alias in a
// single atomic action set, so readers never observe an unbound or
// double-bound alias. All generations but the most recent prior one are
// deleted, which bounds storage growth while keeping a manual rollback
// target.
package rollover
