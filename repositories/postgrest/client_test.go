package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/semantic-retrieval/config"
	"github.com/upb/semantic-retrieval/services/search"
	"go.uber.org/zap"
)

func newTestClient(serverURL, function string) *Client {
	return NewClient(config.PostgRESTConfig{
		URL:    serverURL + "/",
		APIKey: "service-key",
	}, function, time.Second, zap.NewNop())
}

func TestClient_MatchDocuments(t *testing.T) {
	scope := "kb-1"
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/match_documents", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Content-Profile"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"doc-1","content":"Refunds within 30 days","similarity":0.91,"metadata":{"source":"faq"}},
			{"id":42,"content":"Shipping","similarity":0.8,"metadata":null}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "match_documents")
	matches, err := client.MatchDocuments(context.Background(), search.MatchParams{
		QueryEmbedding: pgvector.NewVector([]float32{0.5, -0.25}),
		MatchThreshold: 0.7,
		MatchCount:     5,
		FilterScopeID:  &scope,
	})
	require.NoError(t, err)

	assert.Equal(t, "[0.5,-0.25]", gotBody["query_embedding"])
	assert.Equal(t, 0.7, gotBody["match_threshold"])
	assert.Equal(t, float64(5), gotBody["match_count"])
	assert.Equal(t, "kb-1", gotBody["filter_scope_id"])

	require.Len(t, matches, 2)
	assert.Equal(t, "doc-1", matches[0].ID)
	assert.Equal(t, 0.91, matches[0].Similarity)
	assert.Equal(t, "faq", matches[0].Metadata["source"])
	assert.Equal(t, "42", matches[1].ID)
	assert.NotNil(t, matches[1].Metadata)
	assert.Empty(t, matches[1].Metadata)
}

func TestClient_MatchDocuments_UnscopedSendsNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		v, present := body["filter_scope_id"]
		assert.True(t, present)
		assert.Nil(t, v)

		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	matches, err := newTestClient(server.URL, "match_documents").MatchDocuments(context.Background(), search.MatchParams{
		QueryEmbedding: pgvector.NewVector([]float32{1}),
		MatchThreshold: 0.5,
		MatchCount:     3,
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_MatchDocuments_SchemaQualifiedFunction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/match_chunks", r.URL.Path)
		assert.Equal(t, "kb", r.Header.Get("Content-Profile"))
		assert.Equal(t, "kb", r.Header.Get("Accept-Profile"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "kb.match_chunks").MatchDocuments(context.Background(), search.MatchParams{
		QueryEmbedding: pgvector.NewVector([]float32{1}),
		MatchCount:     1,
	})
	require.NoError(t, err)
}

func TestClient_MatchDocuments_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Could not find the function public.match_documents"}` + strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "match_documents").MatchDocuments(context.Background(), search.MatchParams{
		QueryEmbedding: pgvector.NewVector([]float32{1}),
		MatchCount:     1,
	})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Len(t, httpErr.Body, maxErrorBodyBytes)
	assert.Contains(t, err.Error(), "Could not find the function")
}

func TestClient_MatchDocuments_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "match_documents").MatchDocuments(context.Background(), search.MatchParams{
		QueryEmbedding: pgvector.NewVector([]float32{1}),
		MatchCount:     1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode rpc response")
}

func TestClient_MatchDocuments_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	// Unblock the handler before Close waits on it; the server only sees the
	// client hang up once the request body has been read.
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL, "match_documents").MatchDocuments(ctx, search.MatchParams{
		QueryEmbedding: pgvector.NewVector([]float32{1}),
		MatchCount:     1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "bad key", status: http.StatusUnauthorized, wantErr: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/rest/v1/", r.URL.Path)
				assert.Equal(t, "service-key", r.Header.Get("apikey"))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := newTestClient(server.URL, "match_documents").HealthCheck(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
