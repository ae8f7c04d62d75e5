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


// Package journal provides a local dead-letter store for documents the
// cluster rejected.
//
// The bulk pipeline treats item-level failures as best-effort: they are
// logged and the run continues. The journal keeps the rejected documents
// themselves, with the cluster's status and reason, so a schema conflict can
// be fixed and the documents replayed without re-running the whole load.
package journal
