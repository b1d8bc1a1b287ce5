package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/infrastructure/fragrantica"
	"github.com/scentpair/backend/internal/logging"
	"github.com/scentpair/backend/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// ScrapeServiceConfig holds capture settings for the scraped source
type ScrapeServiceConfig struct {
	SearchWaitFor time.Duration
	DetailWaitFor time.Duration
}

// ScrapeService looks up fragrances by capturing encyclopedia pages through
// the scraping proxy. Resolve never fails: a thin record built from the
// search hit stands in when the detail page cannot be fetched.
type ScrapeService struct {
	cache  domain.CacheRepository
	client domain.ScrapeClient
	group  singleflight.Group
	config ScrapeServiceConfig
}

// NewScrapeService creates a new scrape service with dependencies
func NewScrapeService(cache domain.CacheRepository, client domain.ScrapeClient, config ScrapeServiceConfig) *ScrapeService {
	if config.SearchWaitFor <= 0 {
		config.SearchWaitFor = 2 * time.Second
	}
	if config.DetailWaitFor <= 0 {
		config.DetailWaitFor = 2500 * time.Millisecond
	}

	return &ScrapeService{
		cache:  cache,
		client: client,
		config: config,
	}
}

// Search captures the search page for query and parses its results.
// Empty result lists are not cached so a transient layout miss is retried.
func (s *ScrapeService) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return []domain.SearchHit{}, nil
	}

	key := strings.ToLower(query)
	if cached, ok := cachedValue[[]domain.SearchHit](ctx, s.cache, domain.NamespaceScrapeSearch, key); ok {
		return cached, nil
	}

	page, err := s.capture(ctx, fragrantica.SearchURL(query), s.config.SearchWaitFor)
	if err != nil {
		return nil, err
	}
	if page.Markdown == "" {
		return nil, &domain.UpstreamError{Source: "firecrawl", Message: "search capture without markdown"}
	}

	hits := fragrantica.ParseSearchResults(page.Markdown)
	logging.Debug().Str("query", query).Int("hits", len(hits)).Msg("parsed scrape search")

	if len(hits) > 0 {
		storeValue(ctx, s.cache, domain.NamespaceScrapeSearch, key, hits)
	}
	return hits, nil
}

// Resolve returns the parsed record for hit, or its minimal projection when
// the page cannot be fetched. Minimal and degraded records are never cached.
func (s *ScrapeService) Resolve(ctx context.Context, hit domain.SearchHit) *domain.Fragrance {
	if hit.URL == "" {
		metrics.DegradedRecords.WithLabelValues("missing_url").Inc()
		return domain.MinimalFragrance(hit)
	}

	if cached, ok := cachedValue[*domain.Fragrance](ctx, s.cache, domain.NamespaceScrapeFragrance, hit.ID); ok {
		return cached
	}

	// the record is seeded from hit, so callers only share a fetch for the same page
	v, err, _ := s.group.Do("resolve:"+hit.ID+"\x00"+hit.URL, func() (interface{}, error) {
		page, err := s.capture(ctx, fragrantica.AbsoluteURL(hit.URL), s.config.DetailWaitFor)
		if err != nil {
			return nil, err
		}

		fragrance := fragrantica.ParseFragrance(&fragrantica.Page{Markdown: page.Markdown, HTML: page.HTML}, hit)
		if fragrance.Degraded {
			logging.Warn().Str("id", hit.ID).Str("url", hit.URL).Msg("page parsed without notes or accords")
			metrics.DegradedRecords.WithLabelValues("parse_empty").Inc()
			return fragrance, nil
		}
		storeValue(ctx, s.cache, domain.NamespaceScrapeFragrance, hit.ID, fragrance)
		return fragrance, nil
	})
	if err != nil {
		logging.Warn().Err(err).Str("id", hit.ID).Str("url", hit.URL).Msg("falling back to minimal record")
		metrics.DegradedRecords.WithLabelValues("fetch_failed").Inc()
		return domain.MinimalFragrance(hit)
	}
	return v.(*domain.Fragrance)
}

// capture fetches url as markdown and rejects unsuccessful or empty captures
func (s *ScrapeService) capture(ctx context.Context, url string, waitFor time.Duration) (*domain.ScrapeData, error) {
	resp, err := s.client.Scrape(ctx, domain.ScrapeRequest{
		URL:             url,
		Format:          domain.FormatMarkdown,
		OnlyMainContent: true,
		WaitForMillis:   int(waitFor / time.Millisecond),
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || !resp.Success || resp.Data == nil {
		msg := "unsuccessful capture"
		if resp != nil && resp.Error != "" {
			msg = resp.Error
		}
		return nil, &domain.UpstreamError{Source: "firecrawl", Message: msg}
	}
	if resp.Data.Markdown == "" && resp.Data.HTML == "" {
		return nil, &domain.UpstreamError{Source: "firecrawl", Message: "empty capture"}
	}
	return resp.Data, nil
}
