package graphstore

import (
	"context"

	"github.com/poiesic/docquery/core"
)

// Store persists per-document graph partitions of chunk nodes linked by
// sequential NEXT edges, and retrieves chunk texts by lexical relevance.
// Partitions share one physical graph and are isolated by a partition
// attribute on every node; every query must filter by it.
// Implementations must be safe for concurrent use across requests.
type Store interface {
	// InsertChunks creates one node per chunk tagged with the document's
	// partition key, and a NEXT edge from chunk i to chunk i+1 for every
	// consecutive pair. Safe to call once per document; re-invocation for
	// the same document without deleting the partition first is undefined.
	// Returns a *core.StoreWriteError on failure.
	InsertChunks(ctx context.Context, documentID string, chunks []core.Chunk) error

	// RetrieveRelevant returns up to limit chunk texts ranked by lexical
	// containment of the question's terms, scoped strictly to the
	// document's partition. No matching nodes yields an empty slice and a
	// nil error; only connectivity failures return a *core.StoreReadError.
	RetrieveRelevant(ctx context.Context, documentID, question string, limit int) ([]string, error)

	// DeletePartition removes every node and edge of the document's
	// partition. Deleting a partition that does not exist is not an error.
	DeletePartition(ctx context.Context, documentID string) error

	// Close releases resources held by the store.
	Close(ctx context.Context) error
}
