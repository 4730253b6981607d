package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/ai/mock"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/graphstore"
	graphmem "github.com/poiesic/docquery/graphstore/memory"
	"github.com/poiesic/docquery/vectorstore"
	vectormem "github.com/poiesic/docquery/vectorstore/memory"
)

// fixedVectorStore returns the same texts for every query.
type fixedVectorStore struct {
	texts   []string
	queries int
}

func (f *fixedVectorStore) CreateCollection(ctx context.Context, documentID string, items []vectorstore.Item) error {
	return nil
}

func (f *fixedVectorStore) Query(ctx context.Context, documentID string, vector []float32, k int) ([]string, error) {
	f.queries++
	return f.texts, nil
}

func (f *fixedVectorStore) DeleteCollection(ctx context.Context, documentID string) error {
	return nil
}

func (f *fixedVectorStore) Close() error { return nil }

// fixedGraphStore returns the same texts for every relevance query.
type fixedGraphStore struct {
	texts   []string
	queries int
}

func (f *fixedGraphStore) InsertChunks(ctx context.Context, documentID string, chunks []core.Chunk) error {
	return nil
}

func (f *fixedGraphStore) RetrieveRelevant(ctx context.Context, documentID, question string, limit int) ([]string, error) {
	f.queries++
	return f.texts, nil
}

func (f *fixedGraphStore) DeletePartition(ctx context.Context, documentID string) error {
	return nil
}

func (f *fixedGraphStore) Close(ctx context.Context) error { return nil }

func newTestAnswerer(t *testing.T, embedder *mock.MockEmbedder, completer *mock.MockCompleter,
	vector vectorstore.Store, graph graphstore.Store, opts ...Option) *Answerer {
	t.Helper()
	answerer, err := NewAnswerer(embedder, completer, vector, graph, opts...)
	require.NoError(t, err)
	return answerer
}

func TestNewAnswerer_Validation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	completer := mock.NewMockCompleter()
	vector := vectormem.NewStore()
	graph := graphmem.NewStore()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"missing embedder", func() error { _, err := NewAnswerer(nil, completer, vector, graph); return err }, ErrEmbedderRequired},
		{"missing completer", func() error { _, err := NewAnswerer(embedder, nil, vector, graph); return err }, ErrCompleterRequired},
		{"missing vector store", func() error { _, err := NewAnswerer(embedder, completer, nil, graph); return err }, ErrVectorStoreRequired},
		{"missing graph store", func() error { _, err := NewAnswerer(embedder, completer, vector, nil); return err }, ErrGraphStoreRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestAnswerer_EmptyQuestion(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	completer := mock.NewMockCompleter()
	vector := &fixedVectorStore{}
	graph := &fixedGraphStore{}
	answerer := newTestAnswerer(t, embedder, completer, vector, graph)

	for _, question := range []string{"", "   ", "\n\t  "} {
		answer, err := answerer.Answer(context.Background(), "doc-1", question)
		require.NoError(t, err)
		assert.Equal(t, EmptyQuestionAnswer, answer)
	}

	// Short-circuit happens before any external call.
	assert.Zero(t, embedder.CallCount())
	assert.Zero(t, completer.CallCount())
	assert.Zero(t, vector.queries)
	assert.Zero(t, graph.queries)
}

func TestAnswerer_EmptyContexts(t *testing.T) {
	// Both stores return nothing; the pipeline still produces an answer.
	completer := mock.NewMockCompleter()
	answerer := newTestAnswerer(t, mock.NewMockEmbedder(), completer,
		vectormem.NewStore(), graphmem.NewStore())

	answer, err := answerer.Answer(context.Background(), "missing-doc", "what is this about?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	// Empty contexts are still valid prompt input: both stages ran.
	require.Len(t, completer.FusionCalls(), 1)
	call := completer.FusionCalls()[0]
	assert.Empty(t, call.VectorContext)
	assert.Empty(t, call.GraphContext)
}

func TestAnswerer_FusesBothContexts(t *testing.T) {
	chunkB := "B is the second section of the document."
	chunkC := "C follows B and closes the document."

	embedder := mock.NewMockEmbedder()
	completer := mock.NewMockCompleter()
	completer.GroundedAnswerFunc = func(ctx context.Context, question, contextText string) (string, error) {
		return "B is a section.", nil
	}
	completer.FuseContextsFunc = func(ctx context.Context, input ai.FusionInput) (string, error) {
		return "B is the document's second section.", nil
	}

	vector := &fixedVectorStore{texts: []string{chunkB}}
	graph := &fixedGraphStore{texts: []string{chunkC}}
	answerer := newTestAnswerer(t, embedder, completer, vector, graph)

	answer, err := answerer.Answer(context.Background(), "doc-1", "what is B?")
	require.NoError(t, err)
	assert.Equal(t, "B is the document's second section.", answer)

	require.Len(t, completer.FusionCalls(), 1)
	call := completer.FusionCalls()[0]
	assert.Equal(t, "what is B?", call.Question)
	assert.Contains(t, call.VectorContext, chunkB)
	assert.Contains(t, call.GraphContext, chunkC)
	assert.Equal(t, "B is a section.", call.PreviousAnswer)

	// The grounded stage saw only the vector context.
	assert.Contains(t, completer.LastGroundedContext(), chunkB)
	assert.NotContains(t, completer.LastGroundedContext(), chunkC)
}

func TestAnswerer_RetrievalFailuresDegrade(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, &core.EmbeddingError{Op: "embed-text", Err: errors.New("model offline")}
	}
	completer := mock.NewMockCompleter()

	answerer := newTestAnswerer(t, embedder, completer,
		&fixedVectorStore{texts: []string{"never retrieved"}}, graphmem.NewStore())

	answer, err := answerer.Answer(context.Background(), "doc-1", "anything?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	// Embedding failed, so the vector store was never queried and the
	// grounded stage ran with an empty context.
	assert.Empty(t, completer.LastGroundedContext())
}

func TestAnswerer_InitialFailureAborts(t *testing.T) {
	completer := mock.NewMockCompleter()
	stageErr := &core.CompletionError{Stage: "initial-answer", Err: errors.New("rate limited")}
	completer.GroundedAnswerFunc = func(ctx context.Context, question, contextText string) (string, error) {
		return "", stageErr
	}

	graph := &fixedGraphStore{texts: []string{"unused"}}
	answerer := newTestAnswerer(t, mock.NewMockEmbedder(), completer, vectormem.NewStore(), graph)

	answer, err := answerer.Answer(context.Background(), "doc-1", "what now?")
	assert.Equal(t, ErrorAnswer, answer)

	var completionErr *core.CompletionError
	require.ErrorAs(t, err, &completionErr)

	// The pipeline aborted before graph retrieval and fusion.
	assert.Zero(t, graph.queries)
	assert.Empty(t, completer.FusionCalls())
}

func TestAnswerer_FusionFailureFallsBack(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.GroundedAnswerFunc = func(ctx context.Context, question, contextText string) (string, error) {
		return "the initial answer", nil
	}
	completer.FuseContextsFunc = func(ctx context.Context, input ai.FusionInput) (string, error) {
		return "", &core.CompletionError{Stage: "final-answer", Err: errors.New("timeout")}
	}

	answerer := newTestAnswerer(t, mock.NewMockEmbedder(), completer,
		vectormem.NewStore(), graphmem.NewStore())

	answer, err := answerer.Answer(context.Background(), "doc-1", "what now?")
	assert.Equal(t, "the initial answer", answer)

	var completionErr *core.CompletionError
	assert.ErrorAs(t, err, &completionErr)
}

func TestAnswerer_BlankGenerationsGetFallbackMessage(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.GroundedAnswerFunc = func(ctx context.Context, question, contextText string) (string, error) {
		return "", nil
	}
	completer.FuseContextsFunc = func(ctx context.Context, input ai.FusionInput) (string, error) {
		return "   ", nil
	}

	answerer := newTestAnswerer(t, mock.NewMockEmbedder(), completer,
		vectormem.NewStore(), graphmem.NewStore())

	answer, err := answerer.Answer(context.Background(), "doc-1", "what now?")
	require.NoError(t, err)
	assert.Equal(t, NoInformationAnswer, answer)
}

// recordingMonitor captures the order of pipeline stage hooks.
type recordingMonitor struct {
	events []string
}

func (m *recordingMonitor) Start(_, _ string)             { m.events = append(m.events, "start") }
func (m *recordingMonitor) AfterVectorRetrieval(_ string) { m.events = append(m.events, "vector") }
func (m *recordingMonitor) AfterInitialAnswer(_ string)   { m.events = append(m.events, "initial") }
func (m *recordingMonitor) AfterGraphRetrieval(_ string)  { m.events = append(m.events, "graph") }
func (m *recordingMonitor) Finish(_ string)               { m.events = append(m.events, "finish") }

func TestAnswerer_MonitorSeesStageOrder(t *testing.T) {
	monitor := &recordingMonitor{}
	answerer := newTestAnswerer(t, mock.NewMockEmbedder(), mock.NewMockCompleter(),
		vectormem.NewStore(), graphmem.NewStore(), WithMonitor(monitor))

	_, err := answerer.Answer(context.Background(), "doc-1", "what is this?")
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "vector", "initial", "graph", "finish"}, monitor.events)
}

func TestAnswerer_RetrievalLimits(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	completer := mock.NewMockCompleter()

	vector := vectormem.NewStore()
	graph := graphmem.NewStore()

	answerer := newTestAnswerer(t, embedder, completer, vector, graph,
		WithTopK(2), WithGraphLimit(3))
	assert.Equal(t, 2, answerer.topK)
	assert.Equal(t, 3, answerer.graphLimit)

	// Non-positive values keep the defaults.
	answerer = newTestAnswerer(t, embedder, completer, vector, graph,
		WithTopK(0), WithGraphLimit(-1))
	assert.Equal(t, DefaultTopK, answerer.topK)
	assert.Equal(t, DefaultGraphLimit, answerer.graphLimit)
}
