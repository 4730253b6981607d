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

// Package query answers questions about an ingested document.
//
// The Answerer runs a fixed four-stage pipeline per question: retrieve
// similar chunks from the vector store, produce a grounded initial
// answer, retrieve related chunks from the graph store, then fuse both
// contexts and the initial answer into a final answer. Retrieval
// failures degrade to an empty context; a failed fusion falls back to
// the initial answer. The pipeline always returns a usable answer
// string, and any returned error is diagnostic only.
package query
