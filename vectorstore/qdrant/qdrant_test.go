package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCollection_RecreatesAndUpserts(t *testing.T) {
	var deletes, creates, upserts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/collections/doc1":
			deletes++
			w.WriteHeader(http.StatusNotFound) // nothing to drop the first time
		case r.Method == http.MethodPut && r.URL.Path == "/collections/doc1":
			creates++
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/doc1/points":
			upserts++
			var body struct {
				Points []struct {
					ID      uint64         `json:"id"`
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Points, 2)
			assert.Equal(t, "doc1", body.Points[0].Payload["document_id"])
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	store := NewStore(Config{URL: server.URL})
	err := store.CreateCollection(context.Background(), "doc1", []vectorstore.Item{
		{ID: 1, Vector: []float32{0.1, 0.2}, Text: "chunk zero"},
		{ID: 2, Vector: []float32{0.3, 0.4}, Text: "chunk one"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, deletes)
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, upserts)
}

func TestQuery_ReturnsPayloadTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/doc1/points/search", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.92, "payload": map[string]any{"text": "best match"}},
				{"score": 0.71, "payload": map[string]any{"text": "second match"}},
			},
		})
	}))
	defer server.Close()

	store := NewStore(Config{URL: server.URL})
	texts, err := store.Query(context.Background(), "doc1", []float32{0.1, 0.2}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"best match", "second match"}, texts)
}

func TestQuery_MissingCollectionIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := NewStore(Config{URL: server.URL})
	texts, err := store.Query(context.Background(), "missing", []float32{0.1}, 3)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestQuery_ServerErrorIsStoreReadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := NewStore(Config{URL: server.URL})
	_, err := store.Query(context.Background(), "doc1", []float32{0.1}, 3)
	require.Error(t, err)

	var readErr *core.StoreReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestDeleteCollection_MissingIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := NewStore(Config{URL: server.URL})
	assert.NoError(t, store.DeleteCollection(context.Background(), "missing"))
}

func TestCreateCollection_WriteFailureIsStoreWriteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	store := NewStore(Config{URL: server.URL})
	err := store.CreateCollection(context.Background(), "doc1", []vectorstore.Item{
		{ID: 1, Vector: []float32{0.1}, Text: "chunk"},
	})
	require.Error(t, err)

	var writeErr *core.StoreWriteError
	assert.ErrorAs(t, err, &writeErr)
}
