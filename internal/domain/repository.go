package domain

import "context"

// Cache namespaces. Each adapter owns its namespaces exclusively.
const (
	NamespaceSearch          = "search"
	NamespaceFragrance       = "fragrance"
	NamespaceSimilar         = "similar"
	NamespaceScrapeSearch    = "scrape-search"
	NamespaceScrapeFragrance = "scrape-fragrance"
)

// CacheRepository defines the interface for namespaced caching operations.
// TTLs are fixed per namespace by the implementation.
type CacheRepository interface {
	Get(ctx context.Context, namespace, key string) (interface{}, error)
	Set(ctx context.Context, namespace, key string, value interface{}) error
	Delete(ctx context.Context, namespace, key string) error
}

// CatalogClient defines the interface for the structured fragrance search API
type CatalogClient interface {
	Search(ctx context.Context, query string, limit int) ([]CatalogHit, error)
}

// ScrapeClient defines the interface for the scraping proxy
type ScrapeClient interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error)
}

// TextGenerator is an opaque text generation service
type TextGenerator interface {
	Generate(ctx context.Context, messages []ChatMessage, opts GenerateOptions) (string, error)
}

// GenerateOptions tunes a single generation request
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}
