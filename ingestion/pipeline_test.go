package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docquery/ai/mock"
	"github.com/poiesic/docquery/core"
	graphmem "github.com/poiesic/docquery/graphstore/memory"
	"github.com/poiesic/docquery/vectorstore"
	vectormem "github.com/poiesic/docquery/vectorstore/memory"
)

// failingVectorStore fails every write but delegates nothing else.
type failingVectorStore struct {
	err error
}

func (f *failingVectorStore) CreateCollection(ctx context.Context, documentID string, items []vectorstore.Item) error {
	return f.err
}

func (f *failingVectorStore) Query(ctx context.Context, documentID string, vector []float32, k int) ([]string, error) {
	return nil, nil
}

func (f *failingVectorStore) DeleteCollection(ctx context.Context, documentID string) error {
	return nil
}

func (f *failingVectorStore) Close() error { return nil }

// failingGraphStore fails every insert.
type failingGraphStore struct {
	err error
}

func (f *failingGraphStore) InsertChunks(ctx context.Context, documentID string, chunks []core.Chunk) error {
	return f.err
}

func (f *failingGraphStore) RetrieveRelevant(ctx context.Context, documentID, question string, limit int) ([]string, error) {
	return nil, nil
}

func (f *failingGraphStore) DeletePartition(ctx context.Context, documentID string) error {
	return nil
}

func (f *failingGraphStore) Close(ctx context.Context) error { return nil }

func TestNewPipeline_Validation(t *testing.T) {
	vector := vectormem.NewStore()
	graph := graphmem.NewStore()
	embedder := mock.NewMockEmbedder()

	t.Run("missing vector store", func(t *testing.T) {
		_, err := NewPipeline(nil, graph, embedder)
		assert.ErrorIs(t, err, ErrVectorStoreRequired)
	})

	t.Run("missing graph store", func(t *testing.T) {
		_, err := NewPipeline(vector, nil, embedder)
		assert.ErrorIs(t, err, ErrGraphStoreRequired)
	})

	t.Run("missing embedder", func(t *testing.T) {
		_, err := NewPipeline(vector, graph, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
}

func TestPipeline_Ingest(t *testing.T) {
	vector := vectormem.NewStore()
	graph := graphmem.NewStore()
	embedder := mock.NewMockEmbedder()

	pipeline, err := NewPipeline(vector, graph, embedder, WithChunking(50, 10))
	require.NoError(t, err)
	defer pipeline.Release()

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)
	input := &core.DocumentInput{
		ID:        "doc-1",
		Title:     "Foxes",
		Text:      text,
		PageCount: 3,
	}

	result, err := pipeline.Ingest(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 3, result.PageCount)
	assert.Greater(t, result.ChunkCount, 1)
	assert.Equal(t, "doc-1", result.VectorCollectionID)
	assert.Equal(t, "doc-1", result.GraphPartitionID)
	assert.True(t, result.Processed)

	// One embedding per chunk.
	assert.Equal(t, result.ChunkCount, embedder.CallCount())

	// Both stores hold the document's chunks.
	queryVector, err := embedder.EmbedText(context.Background(), "fox")
	require.NoError(t, err)
	texts, err := vector.Query(context.Background(), "doc-1", queryVector, 2)
	require.NoError(t, err)
	assert.Len(t, texts, 2)

	graphTexts, err := graph.RetrieveRelevant(context.Background(), "doc-1", "what does the fox do", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, graphTexts)
}

func TestPipeline_Ingest_InvalidInput(t *testing.T) {
	pipeline, err := NewPipeline(vectormem.NewStore(), graphmem.NewStore(), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer pipeline.Release()

	tests := []struct {
		name  string
		input *core.DocumentInput
		want  error
	}{
		{
			name:  "empty id",
			input: &core.DocumentInput{Title: "t", Text: "text", PageCount: 1},
			want:  core.ErrEmptyDocumentID,
		},
		{
			name:  "empty text",
			input: &core.DocumentInput{ID: "doc-1", Title: "t", PageCount: 1},
			want:  core.ErrEmptyDocument,
		},
		{
			name:  "whitespace text",
			input: &core.DocumentInput{ID: "doc-1", Title: "t", Text: "   \n\t  ", PageCount: 1},
			want:  core.ErrEmptyDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Ingest(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPipeline_Ingest_EmbeddingFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, &core.EmbeddingError{Op: "embed-text", Err: errors.New("model offline")}
	}

	vector := vectormem.NewStore()
	graph := graphmem.NewStore()
	pipeline, err := NewPipeline(vector, graph, embedder)
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Ingest(context.Background(), &core.DocumentInput{
		ID: "doc-1", Title: "t", Text: "some document text", PageCount: 1,
	})

	var ingestErr *core.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.False(t, ingestErr.Embedded)
	assert.False(t, ingestErr.VectorWritten)
	assert.False(t, ingestErr.GraphWritten)

	var embedErr *core.EmbeddingError
	assert.ErrorAs(t, err, &embedErr)

	// No store was touched.
	texts, err := graph.RetrieveRelevant(context.Background(), "doc-1", "document", 5)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestPipeline_Ingest_VectorWriteFailure(t *testing.T) {
	storeErr := &core.StoreWriteError{Store: "vector", DocumentID: "doc-1", Err: errors.New("connection refused")}
	graph := graphmem.NewStore()

	pipeline, err := NewPipeline(&failingVectorStore{err: storeErr}, graph, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Ingest(context.Background(), &core.DocumentInput{
		ID: "doc-1", Title: "t", Text: "some document text", PageCount: 1,
	})

	var ingestErr *core.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.True(t, ingestErr.Embedded)
	assert.False(t, ingestErr.VectorWritten)
	assert.True(t, ingestErr.GraphWritten)

	// The graph write still completed.
	texts, retrieveErr := graph.RetrieveRelevant(context.Background(), "doc-1", "document", 5)
	require.NoError(t, retrieveErr)
	assert.NotEmpty(t, texts)
}

func TestPipeline_Ingest_GraphWriteFailure(t *testing.T) {
	storeErr := &core.StoreWriteError{Store: "graph", DocumentID: "doc-1", Err: errors.New("bolt handshake failed")}
	vector := vectormem.NewStore()
	embedder := mock.NewMockEmbedder()

	pipeline, err := NewPipeline(vector, &failingGraphStore{err: storeErr}, embedder)
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Ingest(context.Background(), &core.DocumentInput{
		ID: "doc-1", Title: "t", Text: "some document text", PageCount: 1,
	})

	var ingestErr *core.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.True(t, ingestErr.Embedded)
	assert.True(t, ingestErr.VectorWritten)
	assert.False(t, ingestErr.GraphWritten)

	queryVector, embedErr := embedder.EmbedText(context.Background(), "document")
	require.NoError(t, embedErr)
	texts, queryErr := vector.Query(context.Background(), "doc-1", queryVector, 1)
	require.NoError(t, queryErr)
	assert.Len(t, texts, 1)
}

func TestPipeline_Ingest_ConcurrentEmbedCounting(t *testing.T) {
	vector := vectormem.NewStore()
	graph := graphmem.NewStore()
	embedder := mock.NewMockEmbedder()

	pipeline, err := NewPipeline(vector, graph, embedder, WithChunking(20, 5), WithPoolSize(8))
	require.NoError(t, err)
	defer pipeline.Release()

	// A large chunk count keeps all eight workers embedding at once.
	result, err := pipeline.Ingest(context.Background(), &core.DocumentInput{
		ID: "doc-1", Title: "t", Text: strings.Repeat("abcde", 1000), PageCount: 1,
	})
	require.NoError(t, err)

	assert.Greater(t, result.ChunkCount, 300)
	assert.Equal(t, result.ChunkCount, embedder.CallCount())
}

func TestPipeline_Ingest_ChunkOverlap(t *testing.T) {
	vector := vectormem.NewStore()
	graph := graphmem.NewStore()

	pipeline, err := NewPipeline(vector, graph, mock.NewMockEmbedder(), WithChunking(20, 5))
	require.NoError(t, err)
	defer pipeline.Release()

	result, err := pipeline.Ingest(context.Background(), &core.DocumentInput{
		ID: "doc-1", Title: "t", Text: strings.Repeat("abcde", 20), PageCount: 1,
	})
	require.NoError(t, err)

	// 100 runes, stride 15: chunks start at 0, 15, ..., 90.
	assert.Equal(t, 7, result.ChunkCount)
}
