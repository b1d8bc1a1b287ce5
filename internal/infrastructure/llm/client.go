// Package llm adapts an OpenAI-compatible chat completion endpoint to the
// text generation port.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/logging"
	"github.com/scentpair/backend/internal/metrics"
)

const sourceName = "llm"

// Config holds the chat completion endpoint settings
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a chat completion client
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a client, or returns nil when no API key is configured
func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate returns the first completion choice for messages
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerateOptions) (string, error) {
	if c == nil {
		return "", domain.ErrConfiguration
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	metrics.UpstreamDuration.WithLabelValues(sourceName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(sourceName, "error").Inc()
		logging.Warn().Err(err).Str("model", c.model).Msg("chat completion failed")
		return "", toUpstreamError(err)
	}
	metrics.UpstreamRequests.WithLabelValues(sourceName, "success").Inc()

	if len(resp.Choices) == 0 {
		return "", &domain.UpstreamError{Source: sourceName, Message: "no response choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func toUpstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{Source: sourceName, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.UpstreamError{Source: sourceName, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return &domain.UpstreamError{Source: sourceName, Message: err.Error()}
}
