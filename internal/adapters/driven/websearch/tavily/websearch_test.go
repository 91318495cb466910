package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

func TestNewWebSearchService_RequiresAPIKey(t *testing.T) {
	_, err := NewWebSearchService(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "golang generics", req["query"])
		assert.Equal(t, "test-key", req["api_key"])

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "First", "url": "https://a.example", "content": "snippet a", "score": 0.9},
				{"title": "Second", "url": "https://b.example", "content": "snippet b", "score": 0.7},
				{"title": "Third", "url": "https://c.example", "content": "snippet c", "score": 0.5},
			},
		})
	}))
	defer server.Close()

	svc, err := NewWebSearchService(Config{APIKey: "test-key", BaseURL: server.URL, RequestsPerSecond: 1000})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "golang generics", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].Title)
	assert.Equal(t, "https://a.example", results[0].URL)
	assert.Equal(t, "snippet a", results[0].Content)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
}

func TestSearch_RejectsNonPositiveLimit(t *testing.T) {
	svc, err := NewWebSearchService(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "q", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, err := NewWebSearchService(Config{APIKey: "k", BaseURL: server.URL, RequestsPerSecond: 1000})
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, domain.ErrWebSearch)
}

func TestSearch_RetriesOn429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"title": "ok", "url": "https://a.example", "content": "c"}},
		})
	}))
	defer server.Close()

	svc, err := NewWebSearchService(Config{APIKey: "k", BaseURL: server.URL, RequestsPerSecond: 1000})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "q", 3)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Title)
}

func TestProviderName(t *testing.T) {
	svc, err := NewWebSearchService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "tavily", svc.ProviderName())
}
