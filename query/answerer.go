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

package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/graphstore"
	"github.com/poiesic/docquery/vectorstore"
)

const (
	// EmptyQuestionAnswer is returned for empty or whitespace-only
	// questions, before any external service is contacted.
	EmptyQuestionAnswer = "Your question is empty. Please ask a question about the PDF."

	// NoInformationAnswer is returned when generation produced no usable
	// text for the question.
	NoInformationAnswer = "I couldn't find any relevant information in the PDF for your question. Please try rephrasing your question or ask about a different topic."

	// ErrorAnswer is returned when the initial generation stage fails
	// and no grounded answer exists to fall back to.
	ErrorAnswer = "I encountered an error while trying to answer your question. Please try again later."
)

// Defaults for the retrieval stages.
const (
	DefaultTopK       = 4
	DefaultGraphLimit = 5
)

// contextSeparator joins retrieved chunk texts into one prompt context.
const contextSeparator = "\n\n"

// Answerer resolves questions against a single ingested document.
// It holds no per-question state; concurrent questions are independent.
type Answerer struct {
	embedder   ai.Embedder
	completer  ai.Completer
	vector     vectorstore.Store
	graph      graphstore.Store
	topK       int
	graphLimit int
	monitor    Monitor
	logger     *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer)

// WithTopK sets how many chunks the vector retrieval stage requests.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(a *Answerer) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithGraphLimit sets how many chunks the graph retrieval stage
// requests. Default is DefaultGraphLimit.
func WithGraphLimit(limit int) Option {
	return func(a *Answerer) {
		if limit > 0 {
			a.graphLimit = limit
		}
	}
}

// WithMonitor sets a monitor observing each pipeline stage.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(a *Answerer) {
		if monitor != nil {
			a.monitor = monitor
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnswerer creates an Answerer over the given services and stores.
func NewAnswerer(
	embedder ai.Embedder,
	completer ai.Completer,
	vector vectorstore.Store,
	graph graphstore.Store,
	opts ...Option,
) (*Answerer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if vector == nil {
		return nil, ErrVectorStoreRequired
	}
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}

	a := &Answerer{
		embedder:   embedder,
		completer:  completer,
		vector:     vector,
		graph:      graph,
		topK:       DefaultTopK,
		graphLimit: DefaultGraphLimit,
		monitor:    &noopMonitor{},
		logger:     slog.Default().With("component", "query"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// stageResult carries exactly one of a stage's answer or its error.
type stageResult struct {
	value string
	err   error
}

// state is the per-question pipeline state. A fresh one is built for
// every call to Answer.
type state struct {
	traceID       string
	documentID    string
	question      string
	vectorContext string
	graphContext  string
	initial       stageResult
	final         stageResult
}

// Answer runs the four-stage pipeline for one question. The returned
// string is always a non-empty user-facing answer; a non-nil error is
// diagnostic and never leaves the answer unusable. Stage order is
// fixed: vector retrieval, initial answer, graph retrieval, fusion.
func (a *Answerer) Answer(ctx context.Context, documentID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return EmptyQuestionAnswer, nil
	}

	st := &state{
		traceID:    uuid.NewString(),
		documentID: documentID,
		question:   question,
	}
	logger := a.logger.With("trace", st.traceID, "document", documentID)
	a.monitor.Start(documentID, question)

	st.vectorContext = a.retrieveVector(ctx, logger, st)
	a.monitor.AfterVectorRetrieval(st.vectorContext)

	st.initial = a.initialAnswer(ctx, st)
	if st.initial.err != nil {
		logger.Error("initial answer generation failed", "err", st.initial.err)
		a.monitor.Finish(ErrorAnswer)
		return ErrorAnswer, st.initial.err
	}
	a.monitor.AfterInitialAnswer(st.initial.value)

	st.graphContext = a.retrieveGraph(ctx, logger, st)
	a.monitor.AfterGraphRetrieval(st.graphContext)

	st.final = a.finalAnswer(ctx, st)
	answer := st.final.value
	var diagnostic error
	if st.final.err != nil {
		logger.Warn("fusion failed, returning initial answer", "err", st.final.err)
		answer = st.initial.value
		diagnostic = st.final.err
	}

	if strings.TrimSpace(answer) == "" {
		answer = NoInformationAnswer
	}
	a.monitor.Finish(answer)
	return answer, diagnostic
}

// retrieveVector embeds the question and queries the document's vector
// collection. Any failure degrades to an empty context.
func (a *Answerer) retrieveVector(ctx context.Context, logger *slog.Logger, st *state) string {
	vector, err := a.embedder.EmbedText(ctx, st.question)
	if err != nil {
		logger.Warn("question embedding failed, continuing without vector context", "err", err)
		return ""
	}

	texts, err := a.vector.Query(ctx, st.documentID, vector, a.topK)
	if err != nil {
		logger.Warn("vector retrieval failed, continuing without vector context", "err", err)
		return ""
	}

	logger.Debug("vector retrieval complete", "chunks", len(texts))
	return strings.Join(texts, contextSeparator)
}

// retrieveGraph queries the document's graph partition for chunks
// related to the question. Any failure degrades to an empty context.
func (a *Answerer) retrieveGraph(ctx context.Context, logger *slog.Logger, st *state) string {
	texts, err := a.graph.RetrieveRelevant(ctx, st.documentID, st.question, a.graphLimit)
	if err != nil {
		logger.Warn("graph retrieval failed, continuing without graph context", "err", err)
		return ""
	}

	logger.Debug("graph retrieval complete", "chunks", len(texts))
	return strings.Join(texts, contextSeparator)
}

func (a *Answerer) initialAnswer(ctx context.Context, st *state) stageResult {
	answer, err := a.completer.GroundedAnswer(ctx, st.question, st.vectorContext)
	if err != nil {
		return stageResult{err: err}
	}
	return stageResult{value: answer}
}

func (a *Answerer) finalAnswer(ctx context.Context, st *state) stageResult {
	answer, err := a.completer.FuseContexts(ctx, ai.FusionInput{
		Question:       st.question,
		VectorContext:  st.vectorContext,
		GraphContext:   st.graphContext,
		PreviousAnswer: st.initial.value,
	})
	if err != nil {
		return stageResult{err: err}
	}
	return stageResult{value: answer}
}
