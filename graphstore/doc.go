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


// Package graphstore defines the per-document chunk graph abstraction.
//
// A document's chunks become nodes in a partition keyed by the document
// ID, linked in reading order by NEXT edges. The baseline relevance query
// ranks nodes by lexical containment of the question's terms and needs no
// traversal; the NEXT edges keep neighborhood expansion available later
// without re-ingestion.
//
// Two implementations are provided:
//
//   - graphstore/neo4j: adapter for a Neo4j server
//   - graphstore/memory: in-process store for tests and offline use
package graphstore
