package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/scentpair/backend/internal/domain"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	mu      sync.Mutex
	hits    map[string][]domain.CatalogHit
	err     error
	queries []string
	limits  []int
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{hits: make(map[string][]domain.CatalogHit)}
}

func (m *MockCatalogClient) Search(ctx context.Context, query string, limit int) ([]domain.CatalogHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	return m.hits[query], nil
}

func (m *MockCatalogClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// MockScrapeClient is a mock implementation of domain.ScrapeClient keyed by URL
type MockScrapeClient struct {
	mu        sync.Mutex
	pages     map[string]*domain.ScrapeResponse
	err       error
	requests  []domain.ScrapeRequest
	onRequest func(ctx context.Context, req domain.ScrapeRequest) error
}

func NewMockScrapeClient() *MockScrapeClient {
	return &MockScrapeClient{pages: make(map[string]*domain.ScrapeResponse)}
}

func (m *MockScrapeClient) page(url, markdown string) {
	m.pages[url] = &domain.ScrapeResponse{Success: true, Data: &domain.ScrapeData{Markdown: markdown}}
}

func (m *MockScrapeClient) Scrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.onRequest
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, req); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.pages[req.URL]; ok {
		return resp, nil
	}
	return nil, &domain.UpstreamError{Source: "firecrawl", StatusCode: 404, Message: "not found"}
}

func (m *MockScrapeClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockTextGenerator is a mock implementation of domain.TextGenerator
type MockTextGenerator struct {
	response string
	err      error
	received []domain.ChatMessage
	options  domain.GenerateOptions
}

func (m *MockTextGenerator) Generate(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerateOptions) (string, error) {
	m.received = messages
	m.options = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fragrance(top, middle, base []string, accords ...string) *domain.Fragrance {
	return &domain.Fragrance{
		TopNotes:    domain.NotesFromNames(top),
		MiddleNotes: domain.NotesFromNames(middle),
		BaseNotes:   domain.NotesFromNames(base),
		Accords:     accords,
	}
}
