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

// Package recordstore defines persistence for document metadata.
//
// The record store tracks which documents exist, whether their
// retrieval state was fully built (Processed), and which vector
// collection and graph partition belong to them. It never stores
// document text or vectors; those live in the retrieval stores.
//
// The badger subpackage provides the embedded implementation.
package recordstore
