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


// Package chunker splits document text into overlapping, ordered segments.
//
// Chunking is deterministic: identical text and configuration always
// produce an identical chunk sequence, so re-ingesting a document
// reproduces the same index. Every source character appears in at least
// one chunk, each chunk is at most MaxChunkSize runes long, and
// consecutive chunks share exactly Overlap runes.
package chunker

import (
	"errors"
	"strings"

	"github.com/poiesic/docquery/core"
)

const (
	// DefaultMaxChunkSize is the default chunk length in runes.
	DefaultMaxChunkSize = 1000

	// DefaultOverlap is the default number of runes shared by
	// consecutive chunks.
	DefaultOverlap = 200
)

var (
	// ErrInvalidChunkSize indicates a non-positive maximum chunk size.
	ErrInvalidChunkSize = errors.New("max chunk size must be positive")

	// ErrInvalidOverlap indicates an overlap that is negative or not
	// smaller than the chunk size.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than max chunk size")
)

// Chunker splits text into fixed-stride overlapping chunks.
// It operates on runes so multi-byte characters are never split.
type Chunker struct {
	maxChunkSize int
	overlap      int
}

// New creates a Chunker with the given maximum chunk size and overlap,
// both measured in runes. Overlap must be smaller than the chunk size or
// the stride would not advance.
func New(maxChunkSize, overlap int) (*Chunker, error) {
	if maxChunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= maxChunkSize {
		return nil, ErrInvalidOverlap
	}
	return &Chunker{maxChunkSize: maxChunkSize, overlap: overlap}, nil
}

// NewDefault creates a Chunker with the default size and overlap.
func NewDefault() *Chunker {
	c, _ := New(DefaultMaxChunkSize, DefaultOverlap)
	return c
}

// MaxChunkSize returns the configured maximum chunk length in runes.
func (c *Chunker) MaxChunkSize() int { return c.maxChunkSize }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks the full document text into an ordered sequence tagged
// with zero-based indices. Text shorter than one chunk yields exactly
// one chunk; empty or whitespace-only text yields no chunks.
func (c *Chunker) Split(documentID, text string) []core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	stride := c.maxChunkSize - c.overlap

	var chunks []core.Chunk
	for start, idx := 0, 0; start < len(runes); start, idx = start+stride, idx+1 {
		end := start + c.maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, core.Chunk{
			DocumentID: documentID,
			Index:      idx,
			Text:       string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
