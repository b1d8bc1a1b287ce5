package firecrawl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/infrastructure/throttle"
	"github.com/scentpair/backend/internal/logging"
	"github.com/scentpair/backend/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const sourceName = "scrape"

// Config holds the scraping proxy settings
type Config struct {
	APIKey          string
	Endpoint        string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client calls the scraping proxy. Every attempt, retries included, passes
// through the shared rate gate first.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	endpoint     string
	gate         *throttle.Gate
	maxRetries   int
	retryBackoff time.Duration
	breaker      *gobreaker.CircuitBreaker[*domain.ScrapeResponse]
}

// NewClient creates a scraping proxy client sharing the given gate
func NewClient(cfg Config, gate *throttle.Gate) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if gate == nil {
		gate = throttle.NewGate(0)
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(sourceName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*domain.ScrapeResponse](gobreaker.Settings{
		Name:        sourceName,
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only server-side and transport failures count against the upstream
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			var upstreamErr *domain.UpstreamError
			if errors.As(err, &upstreamErr) {
				return upstreamErr.StatusCode > 0 && !upstreamErr.Retryable()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		apiKey:       cfg.APIKey,
		endpoint:     cfg.Endpoint,
		gate:         gate,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: cfg.RetryBackoff,
		breaker:      breaker,
	}
}

type scrapePayload struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor"`
}

// Scrape captures a page. 5xx responses are retried up to MaxRetries times with
// a fixed backoff; any other failure is returned immediately.
func (c *Client) Scrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: scrape API key is not set", domain.ErrConfiguration)
	}
	if req.Format == "" {
		req.Format = domain.FormatMarkdown
	}

	resp, err := c.breaker.Execute(func() (*domain.ScrapeResponse, error) {
		return c.scrapeWithRetry(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamRequests.WithLabelValues(sourceName, "rejected").Inc()
		return nil, &domain.UpstreamError{Source: sourceName, Message: "circuit open: " + err.Error()}
	}
	return resp, err
}

func (c *Client) scrapeWithRetry(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.doScrape(ctx, req)
		if err == nil {
			return resp, nil
		}

		var upstreamErr *domain.UpstreamError
		if !errors.As(err, &upstreamErr) || !upstreamErr.Retryable() || attempt >= c.maxRetries {
			return nil, err
		}

		metrics.ScrapeRetries.Inc()
		logging.Warn().Str("source", sourceName).Str("url", req.URL).Int("status", upstreamErr.StatusCode).
			Int("retries_left", c.maxRetries-attempt).Msg("scrape failed with server error, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryBackoff):
		}
	}
}

func (c *Client) doScrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResponse, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(scrapePayload{
		URL:             req.URL,
		Formats:         []string{string(req.Format)},
		OnlyMainContent: true,
		WaitFor:         req.WaitForMillis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.UpstreamDuration.WithLabelValues(sourceName).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
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
		return nil, &domain.UpstreamError{Source: sourceName, StatusCode: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	var scrapeResp domain.ScrapeResponse
	if err := json.Unmarshal(body, &scrapeResp); err != nil {
		metrics.UpstreamRequests.WithLabelValues(sourceName, "malformed").Inc()
		return nil, &domain.UpstreamError{Source: sourceName, StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}

	metrics.UpstreamRequests.WithLabelValues(sourceName, "success").Inc()
	return &scrapeResp, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
