package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("doc1_0")
	id2 := IDFromContent("doc1_0")
	assert.Equal(t, id1, id2)
}

func TestIDFromContent_DifferentContent(t *testing.T) {
	id1 := IDFromContent("doc1_0")
	id2 := IDFromContent("doc1_1")
	assert.NotEqual(t, id1, id2)
}

func TestChunkKey(t *testing.T) {
	chunk := Chunk{DocumentID: "abc123", Index: 4, Text: "hello"}
	assert.Equal(t, "abc123_4", chunk.Key())
}

func TestChunkPointID_StableAcrossChunks(t *testing.T) {
	a := Chunk{DocumentID: "doc", Index: 0}
	b := Chunk{DocumentID: "doc", Index: 0}
	c := Chunk{DocumentID: "doc", Index: 1}

	assert.Equal(t, a.PointID(), b.PointID())
	assert.NotEqual(t, a.PointID(), c.PointID())
}

func TestValidateDocumentInput(t *testing.T) {
	testCases := []struct {
		name    string
		input   *DocumentInput
		wantErr error
	}{
		{
			name:    "valid input",
			input:   &DocumentInput{ID: "doc1", Text: "some text", PageCount: 3},
			wantErr: nil,
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "empty id",
			input:   &DocumentInput{Text: "some text"},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name:    "whitespace text",
			input:   &DocumentInput{ID: "doc1", Text: "   \n\t "},
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "negative page count",
			input:   &DocumentInput{ID: "doc1", Text: "text", PageCount: -1},
			wantErr: ErrInvalidPageCount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDocumentInput(tc.input)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr))
		})
	}
}

func TestValidateChunkSequence(t *testing.T) {
	valid := []Chunk{
		{DocumentID: "d", Index: 0, Text: "a"},
		{DocumentID: "d", Index: 1, Text: "b"},
	}
	assert.NoError(t, ValidateChunkSequence("d", valid))

	wrongDoc := []Chunk{{DocumentID: "other", Index: 0, Text: "a"}}
	assert.Error(t, ValidateChunkSequence("d", wrongDoc))

	gap := []Chunk{
		{DocumentID: "d", Index: 0, Text: "a"},
		{DocumentID: "d", Index: 2, Text: "b"},
	}
	assert.Error(t, ValidateChunkSequence("d", gap))

	empty := []Chunk{{DocumentID: "d", Index: 0, Text: ""}}
	assert.Error(t, ValidateChunkSequence("d", empty))
}

func TestIngestionError_PartialState(t *testing.T) {
	cause := errors.New("boom")
	err := &IngestionError{
		DocumentID:    "doc1",
		Embedded:      true,
		VectorWritten: true,
		GraphWritten:  false,
		Err:           cause,
	}

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "doc1")
	assert.Contains(t, err.Error(), "graph=false")
}

func TestErrorTaxonomy_Unwrap(t *testing.T) {
	cause := errors.New("timeout")

	var err error = &EmbeddingError{Op: "embed-question", Err: cause}
	assert.True(t, errors.Is(err, cause))

	err = &CompletionError{Stage: "initial-answer", Err: cause}
	assert.True(t, errors.Is(err, cause))

	err = &StoreWriteError{Store: "vector", DocumentID: "d", Err: cause}
	assert.True(t, errors.Is(err, cause))

	err = &StoreReadError{Store: "graph", DocumentID: "d", Err: cause}
	assert.True(t, errors.Is(err, cause))
}
