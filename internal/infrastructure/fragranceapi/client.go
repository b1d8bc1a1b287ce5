package fragranceapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/logging"
	"github.com/scentpair/backend/internal/metrics"
)

const (
	sourceName = "catalog"
	indexUID   = "fragrances"
)

// Config holds the structured search API settings
type Config struct {
	APIKey  string
	BaseURL string
	Host    string
	Timeout time.Duration
}

// Client handles communication with the structured fragrance search API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	host       string
}

// NewClient creates a new catalog API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		host:       cfg.Host,
	}
}

type multiSearchQuery struct {
	IndexUID string `json:"indexUid"`
	Q        string `json:"q"`
	Limit    int    `json:"limit"`
}

type multiSearchRequest struct {
	Queries []multiSearchQuery `json:"queries"`
}

type multiSearchResponse struct {
	Results []struct {
		Hits               []domain.CatalogHit `json:"hits"`
		EstimatedTotalHits int                 `json:"estimatedTotalHits,omitempty"`
	} `json:"results"`
}

// Search runs one free-text query against the fragrance index.
// An empty hit list is not an error here; callers decide what "no hits" means.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.CatalogHit, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: catalog API key is not set", domain.ErrConfiguration)
	}

	payload, err := json.Marshal(multiSearchRequest{
		Queries: []multiSearchQuery{{IndexUID: indexUID, Q: query, Limit: limit}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/multi-search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", c.apiKey)
	if c.host != "" {
		req.Header.Set("x-rapidapi-host", c.host)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(sourceName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(sourceName, "transport_error").Inc()
		return nil, &domain.UpstreamError{Source: sourceName, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(sourceName, "transport_error").Inc()
		return nil, &domain.UpstreamError{Source: sourceName, Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome := "client_error"
		if resp.StatusCode >= 500 {
			outcome = "server_error"
		}
		metrics.UpstreamRequests.WithLabelValues(sourceName, outcome).Inc()
		logging.Warn().Str("source", sourceName).Int("status", resp.StatusCode).Str("body", truncate(string(body), 200)).Msg("catalog API error")
		return nil, &domain.UpstreamError{Source: sourceName, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var searchResp multiSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		metrics.UpstreamRequests.WithLabelValues(sourceName, "malformed").Inc()
		return nil, &domain.UpstreamError{Source: sourceName, StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	metrics.UpstreamRequests.WithLabelValues(sourceName, "success").Inc()

	if len(searchResp.Results) == 0 {
		return []domain.CatalogHit{}, nil
	}

	hits := searchResp.Results[0].Hits
	logging.Debug().Str("source", sourceName).Str("query", query).Int("hits", len(hits)).Msg("catalog search completed")
	return hits, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
