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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a DocumentInput failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentID indicates the document ID is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyDocument indicates the document text is empty or whitespace-only.
	ErrEmptyDocument = errors.New("document text cannot be empty")

	// ErrInvalidPageCount indicates a negative page count.
	ErrInvalidPageCount = errors.New("page count cannot be negative")
)

// EmbeddingError indicates the embedding service failed on a transport,
// auth, or rate-limit level. Ingestion treats it as fatal; the query path
// recovers with an empty retrieval context.
type EmbeddingError struct {
	Op  string // "embed-text", "embed-texts"
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding service: %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// CompletionError indicates the completion service failed.
// Stage names the generation stage that failed.
type CompletionError struct {
	Stage string // "initial-answer", "final-answer"
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion service: %s: %v", e.Stage, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// StoreWriteError indicates a retrieval store rejected or aborted a write.
// A document whose ingestion hit a StoreWriteError must never be marked
// processed.
type StoreWriteError struct {
	Store      string // "vector", "graph"
	DocumentID string
	Err        error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s store write failed for document %s: %v", e.Store, e.DocumentID, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreReadError indicates a retrieval store connectivity failure during a
// query. Callers on the query path substitute an empty context instead of
// aborting the question.
type StoreReadError struct {
	Store      string // "vector", "graph"
	DocumentID string
	Err        error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("%s store read failed for document %s: %v", e.Store, e.DocumentID, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// IngestionError wraps any failure during ingestion and records how far
// the pipeline got. Partial writes are unusable garbage, never a valid
// partial index; there is no automatic rollback, but collection creation
// overwrites, so retrying a failed ingestion is safe.
type IngestionError struct {
	DocumentID    string
	Embedded      bool // all chunk embeddings were produced
	VectorWritten bool // vector collection was fully created
	GraphWritten  bool // graph partition was fully created
	Err           error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed for document %s (embedded=%t vector=%t graph=%t): %v",
		e.DocumentID, e.Embedded, e.VectorWritten, e.GraphWritten, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
