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


// Package badger provides a BadgerDB-backed document repository.
package badger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/recordstore"
)

// ErrBackendRequired is returned when a backend is not provided.
var ErrBackendRequired = errors.New("backend required")

// DocumentRepository implements recordstore.DocumentRepository on BadgerDB.
type DocumentRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ recordstore.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a document repository over the backend.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &DocumentRepository{
		backend: backend,
		logger:  slog.Default().With("component", "recordstore"),
	}, nil
}

// PutDocument inserts or replaces a document record. InsertedAt is
// preserved for existing records; UpdatedAt is always refreshed.
func (r *DocumentRepository) PutDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if doc == nil {
		return nil, core.ErrInvalidDocument
	}
	if doc.ID == "" {
		return nil, core.ErrEmptyDocumentID
	}
	if r.backend.IsClosed() {
		return nil, recordstore.ErrStorageClosed
	}

	stored := *doc
	now := time.Now().UTC()
	stored.UpdatedAt = now

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(stored.ID)

		existing, err := readDocument(tx, key)
		switch {
		case err == nil:
			stored.InsertedAt = existing.InsertedAt
		case errors.Is(err, recordstore.ErrNotFound):
			if stored.InsertedAt.IsZero() {
				stored.InsertedAt = now
			}
		default:
			return err
		}

		data, err := recordstore.MarshalDocument(&stored)
		if err != nil {
			return err
		}
		if err := tx.Set(key, data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	if id == "" {
		return nil, core.ErrEmptyDocumentID
	}
	if r.backend.IsClosed() {
		return nil, recordstore.ErrStorageClosed
	}

	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, makeDocumentKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document record by ID.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrEmptyDocumentID
	}
	if r.backend.IsClosed() {
		return recordstore.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return recordstore.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListDocuments retrieves all document records, ordered by ID.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	if r.backend.IsClosed() {
		return nil, recordstore.ErrStorageClosed
	}

	var docs []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = documentKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				doc, err := recordstore.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Close releases repository resources. The backend is owned by the
// caller and closed separately.
func (r *DocumentRepository) Close() error {
	return nil
}

// readDocument reads and deserializes a document record within a
// transaction. Returns recordstore.ErrNotFound for missing keys.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, recordstore.ErrNotFound
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = recordstore.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
