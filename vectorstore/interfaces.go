package vectorstore

import (
	"context"

	"github.com/poiesic/docquery/core"
)

// Item is one vector store entry: an opaque numeric ID, the chunk's
// embedding, and the chunk text carried as payload so queries can return
// text directly.
type Item struct {
	ID     core.ID
	Vector []float32
	Text   string
}

// Store persists per-document vector collections and answers
// nearest-neighbor queries against them. One collection exists per
// document, keyed by the document ID, so retrieval can never leak chunks
// across documents. Implementations must be safe for concurrent use
// across requests for different documents.
type Store interface {
	// CreateCollection creates the collection for the document and fills
	// it with the given items. If a collection for the document already
	// exists it is dropped and rebuilt, so re-ingestion fully overwrites
	// the prior index. Returns a *core.StoreWriteError on failure; a
	// failed call leaves the collection unusable, never half-valid.
	CreateCollection(ctx context.Context, documentID string, items []Item) error

	// Query returns up to k item texts ordered by descending cosine
	// similarity to the query vector. A missing collection or zero hits
	// yields an empty slice and a nil error; only connectivity failures
	// return a *core.StoreReadError.
	Query(ctx context.Context, documentID string, vector []float32, k int) ([]string, error)

	// DeleteCollection removes the document's collection. Deleting a
	// collection that does not exist is not an error.
	DeleteCollection(ctx context.Context, documentID string) error

	// Close releases resources held by the store.
	Close() error
}
