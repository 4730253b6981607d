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


package docquery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/ai/openai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/graphstore"
	graphmem "github.com/poiesic/docquery/graphstore/memory"
	"github.com/poiesic/docquery/ingestion"
	"github.com/poiesic/docquery/query"
	"github.com/poiesic/docquery/recordstore"
	"github.com/poiesic/docquery/recordstore/badger"
	"github.com/poiesic/docquery/vectorstore"
	vectormem "github.com/poiesic/docquery/vectorstore/memory"
)

// Answers returned by Ask before the question pipeline runs.
const (
	// NotFoundAnswer is returned when asking about an unknown document.
	NotFoundAnswer = "I couldn't find that PDF. Please ingest it before asking questions."

	// NotProcessedAnswer is returned when a document's retrieval state
	// was never fully built.
	NotProcessedAnswer = "That PDF hasn't been fully processed yet. Please ingest it again before asking questions."
)

// ErrDocumentNotProcessed indicates the document exists but its
// retrieval stores were never fully populated.
var ErrDocumentNotProcessed = errors.New("document not processed")

// System wires the record store, both retrieval stores, and the AI
// provider into the two top-level operations: ingesting a document and
// answering questions about it. Store handles are explicit, injected
// dependencies; the System owns their lifetimes.
type System struct {
	backend   *badger.Backend
	documents recordstore.DocumentRepository
	vector    vectorstore.Store
	graph     graphstore.Store
	provider  ai.Provider
	pipeline  *ingestion.Pipeline
	answerer  *query.Answerer
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig     *ai.Config
	vector       vectorstore.Store
	graph        graphstore.Store
	provider     ai.Provider
	pipelineOpts []ingestion.Option
	answererOpts []query.Option
}

// WithAIConfig sets the AI service configuration used when no provider
// is injected.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithVectorStore injects the vector store handle.
// Default is the in-memory store.
func WithVectorStore(store vectorstore.Store) SystemOption {
	return func(o *systemOptions) { o.vector = store }
}

// WithGraphStore injects the graph store handle.
// Default is the in-memory store.
func WithGraphStore(store graphstore.Store) SystemOption {
	return func(o *systemOptions) { o.graph = store }
}

// WithProvider injects the AI provider, bypassing the OpenAI default.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) { o.provider = provider }
}

// WithIngestionOptions forwards options to the ingestion pipeline.
func WithIngestionOptions(opts ...ingestion.Option) SystemOption {
	return func(o *systemOptions) { o.pipelineOpts = append(o.pipelineOpts, opts...) }
}

// WithQueryOptions forwards options to the query answerer.
func WithQueryOptions(opts ...query.Option) SystemOption {
	return func(o *systemOptions) { o.answererOpts = append(o.answererOpts, opts...) }
}

// NewSystem opens the document record store at filePath (in-memory if
// empty) and assembles the ingestion and query pipelines.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	vector := options.vector
	if vector == nil {
		vector = vectormem.NewStore()
	}
	graph := options.graph
	if graph == nil {
		graph = graphmem.NewStore()
	}

	pipeline, err := ingestion.NewPipeline(vector, graph, provider.Embedder(), options.pipelineOpts...)
	if err != nil {
		provider.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	answerer, err := query.NewAnswerer(provider.Embedder(), provider.Completer(), vector, graph, options.answererOpts...)
	if err != nil {
		pipeline.Release()
		provider.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:   backend,
		documents: documents,
		vector:    vector,
		graph:     graph,
		provider:  provider,
		pipeline:  pipeline,
		answerer:  answerer,
		logger:    slog.Default(),
	}, nil
}

// IngestDocument runs the ingestion pipeline for the input and persists
// the document record. Re-ingesting an existing ID fully overwrites its
// prior retrieval state; if the prior graph partition cannot be cleared
// the re-ingest aborts with the record untouched. On pipeline failure
// the record is kept with Processed false so the failure is visible and
// retryable.
func (s *System) IngestDocument(ctx context.Context, input *core.DocumentInput) (*core.Document, error) {
	if err := core.ValidateDocumentInput(input); err != nil {
		return nil, err
	}

	// Drop any previous partition so a re-ingest can't leave
	// mixed-generation chunks behind. The vector collection overwrites
	// itself on create. A failed clear aborts: a shorter re-ingest over a
	// surviving partition would keep stale high-index chunks retrievable.
	if err := s.graph.DeletePartition(ctx, input.ID); err != nil {
		s.logger.Error("could not clear previous graph partition", "document", input.ID, "err", err)
		return nil, err
	}

	result, ingestErr := s.pipeline.Ingest(ctx, input)

	doc := &core.Document{
		ID:        input.ID,
		Title:     input.Title,
		PageCount: input.PageCount,
	}
	if result != nil {
		doc.ChunkCount = result.ChunkCount
		doc.Processed = result.Processed
		doc.VectorCollectionID = result.VectorCollectionID
		doc.GraphPartitionID = result.GraphPartitionID
	}

	stored, putErr := s.documents.PutDocument(ctx, doc)
	if ingestErr != nil {
		return nil, errors.Join(ingestErr, putErr)
	}
	if putErr != nil {
		return nil, putErr
	}

	s.logger.Info("document ingested",
		"document", stored.ID, "pages", stored.PageCount, "chunks", stored.ChunkCount)
	return stored, nil
}

// Ask answers a question about an ingested document. The returned
// string is always a user-facing answer; the error is diagnostic only.
// Unknown or unprocessed documents get a plain-language refusal without
// contacting any AI service.
func (s *System) Ask(ctx context.Context, documentID, question string) (string, error) {
	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return NotFoundAnswer, err
		}
		return query.ErrorAnswer, err
	}
	if !doc.Processed {
		return NotProcessedAnswer, ErrDocumentNotProcessed
	}

	return s.answerer.Answer(ctx, documentID, question)
}

// DeleteDocument removes the document record, its vector collection,
// and its graph partition. Store cleanup is best-effort; all failures
// are joined into the returned error. Returns recordstore.ErrNotFound
// if no record exists.
func (s *System) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.documents.GetDocument(ctx, documentID); err != nil {
		return err
	}

	var errs []error
	if err := s.vector.DeleteCollection(ctx, documentID); err != nil {
		errs = append(errs, err)
	}
	if err := s.graph.DeletePartition(ctx, documentID); err != nil {
		errs = append(errs, err)
	}
	if err := s.documents.DeleteDocument(ctx, documentID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Documents exposes the document metadata repository.
func (s *System) Documents() recordstore.DocumentRepository {
	return s.documents
}

// Close releases all owned resources.
func (s *System) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.vector.Close(); err != nil {
		s.logger.Error("error closing vector store", "err", err)
	}
	if err := s.graph.Close(context.Background()); err != nil {
		s.logger.Error("error closing graph store", "err", err)
	}

	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
