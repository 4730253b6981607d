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

package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/chunker"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/graphstore"
	"github.com/poiesic/docquery/vectorstore"
)

// Pipeline orchestrates the ingestion of a document into the vector and
// graph stores. It manages concurrent embedding generation and runs the
// two store writes in parallel.
type Pipeline struct {
	vector           vectorstore.Store
	graph            graphstore.Store
	embedder         ai.Embedder
	splitter         *chunker.Chunker
	pool             *ants.Pool
	progressWriter   io.Writer
	progressInterval int
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunking overrides the default chunk size and overlap.
func WithChunking(maxChunkSize, overlap int) Option {
	return func(p *Pipeline) error {
		splitter, err := chunker.New(maxChunkSize, overlap)
		if err != nil {
			return err
		}
		p.splitter = splitter
		return nil
	}
}

// WithProgress reports embedding progress to the writer every
// reportInterval chunks. Default is no reporting.
func WithProgress(writer io.Writer, reportInterval int) Option {
	return func(p *Pipeline) error {
		if reportInterval < 1 {
			reportInterval = 1
		}
		p.progressWriter = writer
		p.progressInterval = reportInterval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	vector vectorstore.Store,
	graph graphstore.Store,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if vector == nil {
		return nil, ErrVectorStoreRequired
	}
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		vector:   vector,
		graph:    graph,
		embedder: embedder,
		splitter: chunker.NewDefault(),
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates the input, splits its text into chunks, embeds every
// chunk, and writes the results to both stores. The vector and graph
// writes run in parallel; if one fails the other still completes, and
// the returned *core.IngestionError records which stages succeeded.
// Only a fully successful run yields a result with Processed set.
func (p *Pipeline) Ingest(ctx context.Context, input *core.DocumentInput) (*core.IngestResult, error) {
	if err := core.ValidateDocumentInput(input); err != nil {
		return nil, err
	}

	chunks := p.splitter.Split(input.ID, input.Text)
	if len(chunks) == 0 {
		return nil, core.ErrEmptyDocument
	}

	p.logger.Info("ingesting document",
		"component", "ingestion",
		"document", input.ID,
		"pages", input.PageCount,
		"chunks", len(chunks))

	items, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, &core.IngestionError{DocumentID: input.ID, Err: err}
	}

	// Both writes run to completion regardless of the other's outcome;
	// the error flags tell the caller which side is usable.
	var vectorErr, graphErr error
	var g errgroup.Group
	g.Go(func() error {
		vectorErr = p.vector.CreateCollection(ctx, input.ID, items)
		return vectorErr
	})
	g.Go(func() error {
		graphErr = p.graph.InsertChunks(ctx, input.ID, chunks)
		return graphErr
	})
	_ = g.Wait()

	if vectorErr != nil || graphErr != nil {
		return nil, &core.IngestionError{
			DocumentID:    input.ID,
			Embedded:      true,
			VectorWritten: vectorErr == nil,
			GraphWritten:  graphErr == nil,
			Err:           errors.Join(vectorErr, graphErr),
		}
	}

	return &core.IngestResult{
		PageCount:          input.PageCount,
		ChunkCount:         len(chunks),
		VectorCollectionID: input.ID,
		GraphPartitionID:   input.ID,
		Processed:          true,
	}, nil
}

// embedChunks generates one embedding per chunk using the worker pool.
// The first embedding failure is kept; remaining workers still drain.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []core.Chunk) ([]vectorstore.Item, error) {
	items := make([]vectorstore.Item, len(chunks))

	var tracker *ProgressTracker
	if p.progressWriter != nil {
		tracker = NewProgressTracker(p.progressWriter, len(chunks), p.progressInterval)
		tracker.Start()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, chunk := range chunks {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			vector, err := p.embedder.EmbedText(ctx, chunk.Text)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			items[i] = vectorstore.Item{
				ID:     chunk.PointID(),
				Vector: vector,
				Text:   chunk.Text,
			}
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if tracker != nil {
		tracker.Finish()
	}
	return items, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
