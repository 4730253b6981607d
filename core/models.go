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

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is an opaque numeric identifier derived from content hashing.
// Vector store items are keyed by IDs of this type.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces an identical ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is the metadata record for one ingested document.
// The ID is the stable external key used as the collection name in the
// vector store and as the partition attribute in the graph store.
type Document struct {
	ID                 string
	Title              string
	PageCount          int
	ChunkCount         int
	Processed          bool
	VectorCollectionID string
	GraphPartitionID   string
	InsertedAt         time.Time
	UpdatedAt          time.Time
}

// DocumentInput is the ingestion request for one document.
// Text is the already-extracted full text; extraction itself is an
// external collaborator.
type DocumentInput struct {
	ID        string
	Title     string
	Text      string
	PageCount int
}

// Chunk is an ordered, zero-indexed segment of a document's text.
// Chunk i has an implicit "next" relation to chunk i+1 of the same
// document, materialized as a NEXT edge in the graph store.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
}

// Key returns the chunk's unique string key, "<documentID>_<index>".
// Graph store nodes are identified by this key.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s_%d", c.DocumentID, c.Index)
}

// PointID returns the chunk's numeric vector store item ID,
// derived deterministically from the chunk key.
func (c Chunk) PointID() ID {
	return IDFromContent(c.Key())
}

// IngestResult reports what ingestion produced for one document.
// Processed is true only when both retrieval stores were fully populated.
type IngestResult struct {
	PageCount          int
	ChunkCount         int
	VectorCollectionID string
	GraphPartitionID   string
	Processed          bool
}
