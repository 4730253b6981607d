package recordstore

import (
	"context"

	"github.com/poiesic/docquery/core"
)

// DocumentRepository provides operations for managing document metadata.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// PutDocument inserts or replaces a document record.
	// Sets InsertedAt on first write and refreshes UpdatedAt on every
	// write. Returns the stored record with timestamps populated.
	PutDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// DeleteDocument removes a document record by ID.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments retrieves all document records, ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// Close releases repository resources.
	Close() error
}
