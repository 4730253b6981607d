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
	"fmt"
	"strings"
)

// ValidateDocumentInput validates an ingestion request according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must contain at least one non-whitespace character
//   - PageCount must not be negative
//
// NOT validated:
//   - Title (optional, display only)
func ValidateDocumentInput(input *DocumentInput) error {
	if input == nil {
		return fmt.Errorf("%w: input is nil", ErrInvalidDocument)
	}

	if input.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if strings.TrimSpace(input.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocument)
	}

	if input.PageCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidPageCount)
	}

	return nil
}

// ValidateChunkSequence checks that chunks form a dense, zero-indexed
// sequence belonging to a single document. Both retrieval stores rely on
// this shape to build the NEXT relation.
func ValidateChunkSequence(documentID string, chunks []Chunk) error {
	for i, chunk := range chunks {
		if chunk.DocumentID != documentID {
			return fmt.Errorf("%w: chunk %d belongs to document %q, want %q",
				ErrInvalidDocument, i, chunk.DocumentID, documentID)
		}
		if chunk.Index != i {
			return fmt.Errorf("%w: chunk at position %d has index %d",
				ErrInvalidDocument, i, chunk.Index)
		}
		if chunk.Text == "" {
			return fmt.Errorf("%w: chunk %d has empty text", ErrInvalidDocument, i)
		}
	}
	return nil
}
