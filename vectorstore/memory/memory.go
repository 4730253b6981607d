// Package memory provides a brute-force in-process vector store.
// Useful for tests and for running without a Qdrant server.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/vectorstore"
)

type entry struct {
	vector []float32
	text   string
}

// Store keeps one in-memory collection per document and answers queries
// by exhaustive cosine similarity. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]entry
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]entry)}
}

// CreateCollection replaces any existing collection for the document.
func (s *Store) CreateCollection(ctx context.Context, documentID string, items []vectorstore.Item) error {
	if len(items) == 0 {
		return &core.StoreWriteError{Store: "vector", DocumentID: documentID, Err: vectorstore.ErrNoItems}
	}
	dim := len(items[0].Vector)
	for _, item := range items {
		if len(item.Vector) != dim {
			return &core.StoreWriteError{Store: "vector", DocumentID: documentID, Err: vectorstore.ErrDimensionMismatch}
		}
	}

	entries := make([]entry, len(items))
	for i, item := range items {
		entries[i] = entry{vector: item.Vector, text: item.Text}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[documentID] = entries
	return nil
}

// Query returns up to k texts by descending cosine similarity.
// A missing collection yields an empty result, not an error.
func (s *Store) Query(ctx context.Context, documentID string, vector []float32, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.collections[documentID]
	if !ok {
		return nil, nil
	}

	type scored struct {
		score float32
		text  string
	}
	results := make([]scored, 0, len(entries))
	for _, e := range entries {
		results = append(results, scored{score: cosine(vector, e.vector), text: e.text})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	texts := make([]string, 0, k)
	for i := 0; i < k; i++ {
		texts = append(texts, results[i].text)
	}
	return texts, nil
}

// DeleteCollection removes the document's collection if present.
func (s *Store) DeleteCollection(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, documentID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// cosine computes cosine similarity between two vectors.
func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
