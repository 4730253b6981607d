// Package qdrant provides a vectorstore.Store backed by a Qdrant server
// over its REST API. Each document gets its own collection, created with
// cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/vectorstore"
)

// Config contains connection details for a Qdrant server.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Store is a minimal REST client to Qdrant implementing vectorstore.Store.
type Store struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore creates a Qdrant-backed store. The HTTP client timeout caps
// every request; Timeout defaults to 15s.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "qdrant-store"),
	}
}

// CreateCollection drops any existing collection for the document and
// recreates it with the given items, so re-ingestion fully overwrites the
// prior index.
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

	// Drop a stale collection first; 404 means there was none.
	if err := s.deleteCollection(ctx, documentID); err != nil {
		return &core.StoreWriteError{Store: "vector", DocumentID: documentID, Err: err}
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(ctx, s.collectionURL(documentID), create, nil); err != nil {
		return &core.StoreWriteError{Store: "vector", DocumentID: documentID, Err: err}
	}

	points := make([]map[string]any, len(items))
	for i, item := range items {
		points[i] = map[string]any{
			"id":     uint64(item.ID),
			"vector": item.Vector,
			"payload": map[string]any{
				"document_id": documentID,
				"text":        item.Text,
			},
		}
	}
	upsert := map[string]any{"points": points}
	if err := s.putJSON(ctx, s.collectionURL(documentID)+"/points?wait=true", upsert, nil); err != nil {
		return &core.StoreWriteError{Store: "vector", DocumentID: documentID, Err: err}
	}

	s.logger.Debug("created vector collection", "document", documentID, "points", len(points))
	return nil
}

// Query returns up to k payload texts by descending similarity. A missing
// collection yields an empty result and a nil error.
func (s *Store) Query(ctx context.Context, documentID string, vector []float32, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.postJSON(ctx, s.collectionURL(documentID)+"/points/search", req, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, &core.StoreReadError{Store: "vector", DocumentID: documentID, Err: err}
	}

	texts := make([]string, 0, len(resp.Result))
	for _, r := range resp.Result {
		if text, ok := r.Payload["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

// DeleteCollection drops the document's collection. A missing collection
// is not an error.
func (s *Store) DeleteCollection(ctx context.Context, documentID string) error {
	if err := s.deleteCollection(ctx, documentID); err != nil {
		return &core.StoreWriteError{Store: "vector", DocumentID: documentID, Err: err}
	}
	return nil
}

// Close is a no-op; the underlying HTTP client holds no resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionURL(documentID string) string {
	return fmt.Sprintf("%s/collections/%s", s.url, documentID)
}

func (s *Store) deleteCollection(ctx context.Context, documentID string) error {
	err := s.doJSON(ctx, http.MethodDelete, s.collectionURL(documentID), nil, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// statusError carries the HTTP status of a failed Qdrant request.
type statusError struct {
	method string
	url    string
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: %s", e.method, e.url, e.status)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (s *Store) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &statusError{method: method, url: url, code: resp.StatusCode, status: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
