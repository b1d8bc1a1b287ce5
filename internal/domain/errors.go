package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a source is called without its API key
	ErrConfiguration = errors.New("source not configured")

	// ErrUpstream is returned when a remote dependency answers non-2xx or malformed data
	ErrUpstream = errors.New("upstream request failed")

	// ErrNotFound is returned when search or resolve yields no usable match
	ErrNotFound = errors.New("fragrance not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is absent from the cache or expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrSuperseded is returned when a newer search of the same session replaced this one
	ErrSuperseded = errors.New("search superseded by a newer query")

	// ErrGenerationUnavailable is returned when the text generation service cannot answer
	ErrGenerationUnavailable = errors.New("text generation unavailable")
)

// UpstreamError describes a failed call to a remote dependency
type UpstreamError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// Retryable reports whether the failure was server-side
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode >= 500
}
