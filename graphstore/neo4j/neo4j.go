// Package neo4j provides a graphstore.Store backed by a Neo4j server.
// Chunk nodes carry a graphId partition attribute; every query filters
// by it, so documents never see each other's chunks.
package neo4j

import (
	"context"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/graphstore"
)

// Config contains connection details for a Neo4j server.
type Config struct {
	URI      string // e.g. "neo4j://localhost:7687"
	Username string
	Password string
	Timeout  time.Duration
}

// Store implements graphstore.Store over the Neo4j Bolt driver.
// The driver handle is safe for concurrent use; sessions are per-call.
type Store struct {
	driver  neo4j.DriverWithContext
	timeout time.Duration
	logger  *slog.Logger
}

var _ graphstore.Store = (*Store)(nil)

// NewStore creates a Neo4j-backed store. Timeout defaults to 15s and
// bounds every call made through the store.
func NewStore(cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Store{
		driver:  driver,
		timeout: timeout,
		logger:  slog.Default().With("component", "neo4j-store"),
	}, nil
}

// InsertChunks creates the partition's nodes and NEXT edges in one write
// transaction, after ensuring the uniqueness constraint on chunk ids.
func (s *Store) InsertChunks(ctx context.Context, documentID string, chunks []core.Chunk) error {
	if err := core.ValidateChunkSequence(documentID, chunks); err != nil {
		return &core.StoreWriteError{Store: "graph", DocumentID: documentID, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// Schema commands run outside the data transaction.
	_, err := session.Run(ctx,
		`CREATE CONSTRAINT IF NOT EXISTS FOR (c:Chunk) REQUIRE c.id IS UNIQUE`, nil)
	if err != nil {
		return &core.StoreWriteError{Store: "graph", DocumentID: documentID, Err: err}
	}

	rows := make([]map[string]any, len(chunks))
	pairs := make([]map[string]any, 0, len(chunks))
	for i, chunk := range chunks {
		rows[i] = map[string]any{
			"id":      chunk.Key(),
			"content": chunk.Text,
			"seq":     int64(chunk.Index),
		}
		if i > 0 {
			pairs = append(pairs, map[string]any{
				"prev": chunks[i-1].Key(),
				"curr": chunk.Key(),
			})
		}
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			`UNWIND $rows AS row
			 MERGE (c:Chunk {id: row.id})
			 SET c.content = row.content, c.graphId = $graphId, c.seq = row.seq`,
			map[string]any{"rows": rows, "graphId": documentID})
		if err != nil {
			return nil, err
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, err
		}

		if len(pairs) == 0 {
			return nil, nil
		}
		result, err = tx.Run(ctx,
			`UNWIND $pairs AS pair
			 MATCH (prev:Chunk {id: pair.prev})
			 MATCH (curr:Chunk {id: pair.curr})
			 MERGE (prev)-[:NEXT]->(curr)`,
			map[string]any{"pairs": pairs})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return &core.StoreWriteError{Store: "graph", DocumentID: documentID, Err: err}
	}

	s.logger.Debug("created graph partition", "document", documentID, "nodes", len(rows), "edges", len(pairs))
	return nil
}

// RetrieveRelevant ranks the partition's chunks by how many question
// terms their content contains. Chunks containing no terms are excluded;
// ties break by sequence order.
func (s *Store) RetrieveRelevant(ctx context.Context, documentID, question string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	terms := graphstore.QuestionTerms(question)
	if len(terms) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			`MATCH (c:Chunk {graphId: $graphId})
			 WHERE c.content IS NOT NULL AND trim(c.content) <> ''
			 WITH c, size([term IN $terms WHERE toLower(c.content) CONTAINS term]) AS relevance
			 WHERE relevance > 0
			 RETURN c.content AS content
			 ORDER BY relevance DESC, c.seq ASC
			 LIMIT $limit`,
			map[string]any{"graphId": documentID, "terms": terms, "limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, &core.StoreReadError{Store: "graph", DocumentID: documentID, Err: err}
	}

	collected := records.([]*neo4j.Record)
	texts := make([]string, 0, len(collected))
	for _, record := range collected {
		value, ok := record.Get("content")
		if !ok {
			continue
		}
		if content, ok := value.(string); ok {
			texts = append(texts, content)
		}
	}
	return texts, nil
}

// DeletePartition detaches and deletes every node of the document's
// partition. Deleting a partition that does not exist is a no-op.
func (s *Store) DeletePartition(ctx context.Context, documentID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			`MATCH (c:Chunk {graphId: $graphId}) DETACH DELETE c`,
			map[string]any{"graphId": documentID})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return &core.StoreWriteError{Store: "graph", DocumentID: documentID, Err: err}
	}
	return nil
}

// Close closes the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
