// Package memory provides an in-process graph store.
// Useful for tests and for running without a Neo4j server.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/graphstore"
)

type node struct {
	seq  int
	text string
	next int // index of the next node in the partition, -1 for the last
}

// Store keeps one partition per document with NEXT links materialized as
// node indices. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	partitions map[string][]node
}

var _ graphstore.Store = (*Store)(nil)

// NewStore creates an empty in-memory graph store.
func NewStore() *Store {
	return &Store{partitions: make(map[string][]node)}
}

// InsertChunks creates the partition's nodes and NEXT links.
func (s *Store) InsertChunks(ctx context.Context, documentID string, chunks []core.Chunk) error {
	if err := core.ValidateChunkSequence(documentID, chunks); err != nil {
		return &core.StoreWriteError{Store: "graph", DocumentID: documentID, Err: err}
	}

	nodes := make([]node, len(chunks))
	for i, chunk := range chunks {
		next := i + 1
		if next == len(chunks) {
			next = -1
		}
		nodes[i] = node{seq: chunk.Index, text: chunk.Text, next: next}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitions[documentID] = nodes
	return nil
}

// RetrieveRelevant ranks the partition's nodes by how many question terms
// their text contains. Nodes containing no terms are excluded; ties break
// by sequence order.
func (s *Store) RetrieveRelevant(ctx context.Context, documentID, question string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	terms := graphstore.QuestionTerms(question)
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, ok := s.partitions[documentID]
	if !ok {
		return nil, nil
	}

	type scored struct {
		score int
		seq   int
		text  string
	}
	var matches []scored
	for _, n := range nodes {
		if score := graphstore.ScoreContainment(n.text, terms); score > 0 {
			matches = append(matches, scored{score: score, seq: n.seq, text: n.text})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].seq < matches[j].seq
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	texts := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		texts = append(texts, matches[i].text)
	}
	return texts, nil
}

// DeletePartition removes the document's partition if present.
func (s *Store) DeletePartition(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.partitions, documentID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// NextOf returns the text of the node following the chunk with the given
// sequence index, and whether such a node exists. Exposed for traversal
// experiments and tests; the baseline retrieval path does not use it.
func (s *Store) NextOf(documentID string, seq int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, ok := s.partitions[documentID]
	if !ok {
		return "", false
	}
	for _, n := range nodes {
		if n.seq == seq {
			if n.next < 0 || n.next >= len(nodes) {
				return "", false
			}
			return nodes[n.next].text, true
		}
	}
	return "", false
}
