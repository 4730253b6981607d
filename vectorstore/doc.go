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


// Package vectorstore defines the per-document vector index abstraction.
//
// A document's chunks live in their own collection, named by the document
// ID. Collection-per-document is an isolation mechanism: a query can only
// ever see one document's chunks, so cross-document leakage is impossible
// by construction rather than by filter correctness.
//
// Two implementations are provided:
//
//   - vectorstore/qdrant: REST adapter for a Qdrant server
//   - vectorstore/memory: brute-force in-process store for tests and
//     offline use
//
// Store handles are explicit, injected dependencies owned by the process;
// there is no ambient collection cache.
package vectorstore
