package database

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *Repository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL, ServiceKey: "test-key"})
	require.NoError(t, err)
	return NewRepository(client)
}

func TestUpsertEmbeddingSendsOnConflict(t *testing.T) {
	var gotQuery string
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("[]"))
	})

	err := repo.Upsert(context.Background(), domain.Embedding{
		ContentType: "project", ContentID: "p1", ContentText: "hello", Vector: []float32{0.1, 0.2},
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "on_conflict=content_type,content_id")
}

func TestSearchSimilarParsesRPCResponse(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/vector_similarity_search", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["similarity_limit"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"content_type": "project", "content_id": "p1", "content_text": "hello", "similarity_score": 0.92},
		})
	})

	matches, err := repo.SearchSimilar(context.Background(), []float32{0.1, 0.2}, []string{"project"}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ContentID)
	assert.InDelta(t, 0.92, matches[0].Similarity, 1e-9)
}

func TestLogOperationAndFeedback(t *testing.T) {
	var paths []string
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("[]"))
	})

	require.NoError(t, repo.LogOperation(context.Background(), domain.AIOperationRecord{
		OperationID: "op1", OperationType: "rag_query", Success: true, Timestamp: time.Now(),
	}))
	require.NoError(t, repo.LogFeedback(context.Background(), domain.Feedback{
		OperationID: "op1", Rating: 5, FeedbackType: "thumbs_up",
	}))

	require.Len(t, paths, 2)
	assert.Equal(t, "/rest/v1/ai_operations", paths[0])
	assert.Equal(t, "/rest/v1/ai_feedback", paths[1])
}

func TestDeleteEmbeddingUsesFilterQuery(t *testing.T) {
	var gotQuery string
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, repo.Delete(context.Background(), "project", "p1"))
	assert.Equal(t, "content_type=eq.project&content_id=eq.p1", gotQuery)
}

func TestHealthCheckFailsWhenServerErrors(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	err := repo.HealthCheck(context.Background())
	assert.Error(t, err)
}
