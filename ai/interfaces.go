package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// FusionInput carries everything the fuse-contexts stage feeds to the
// completion model: the question, both retrieval contexts, and the answer
// produced by the grounded-answer stage. Empty contexts are valid input
// and signal that no information was found.
type FusionInput struct {
	Question       string
	VectorContext  string
	GraphContext   string
	PreviousAnswer string
}

// Completer answers questions with a generative completion model.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// GroundedAnswer produces an answer to the question constrained to the
	// given retrieval context, using the grounded-answer prompt.
	GroundedAnswer(ctx context.Context, question, contextText string) (string, error)

	// FuseContexts produces a final answer that combines both retrieval
	// contexts with the previous answer, using the fuse-contexts prompt.
	FuseContexts(ctx context.Context, input FusionInput) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Completer instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
