package fragranceapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scentpair/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient(Config{APIKey: "test-api-key", BaseURL: "https://api.example.com/", Host: "api.example.com"})

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/multi-search", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "fragrance-api.test", r.Header.Get("x-rapidapi-host"))

		var body struct {
			Queries []struct {
				IndexUID string `json:"indexUid"`
				Q        string `json:"q"`
				Limit    int    `json:"limit"`
			} `json:"queries"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Queries, 1)
		assert.Equal(t, "fragrances", body.Queries[0].IndexUID)
		assert.Equal(t, "aventus", body.Queries[0].Q)
		assert.Equal(t, 20, body.Queries[0].Limit)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"hits":[
			{"id": 9828, "name": "Aventus", "brand": {"id": 1, "name": "Creed"},
			 "image": {"url": "https://img.test/9828.jpg"}, "reviewsScoreAvg": 4.3, "reviewsCount": 120,
			 "notes": [{"id": "n1", "name": "Pineapple"}, {"id": "n2", "name": "Birch"}]}
		]}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-api-key", BaseURL: server.URL, Host: "fragrance-api.test"})

	hits, err := client.Search(context.Background(), "aventus", 20)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(9828), hits[0].ID)
	assert.Equal(t, "Creed", hits[0].Brand.Name)
	require.NotNil(t, hits[0].Image)
	assert.Equal(t, "https://img.test/9828.jpg", hits[0].Image.URL)
	require.NotNil(t, hits[0].ReviewsScoreAvg)
	assert.InDelta(t, 4.3, *hits[0].ReviewsScoreAvg, 0.001)
	assert.Len(t, hits[0].Notes, 2)
}

func TestSearch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})

	hits, err := client.Search(context.Background(), "nothing", 20)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_MissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Search(context.Background(), "aventus", 20)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.False(t, called, "no request should be sent without a key")
}

func TestSearch_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "k", BaseURL: server.URL})

			_, err := client.Search(context.Background(), "aventus", 20)

			assert.ErrorIs(t, err, domain.ErrUpstream)
			var upstreamErr *domain.UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, tt.status, upstreamErr.StatusCode)
			assert.Equal(t, 1, attempts, "structured source does not retry")
		})
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})

	_, err := client.Search(context.Background(), "aventus", 20)

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "aventus", 20)

	assert.Error(t, err)
}
