package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/infrastructure/fragranceapi"
	"github.com/scentpair/backend/internal/logging"
	"golang.org/x/sync/singleflight"
)

// MinQueryLength is the shortest query sent to a source; shorter queries return no hits
const MinQueryLength = 2

// CatalogServiceConfig holds result limits for the structured source
type CatalogServiceConfig struct {
	SearchLimit  int
	ResolveLimit int
	SimilarLimit int
	MaxSimilar   int
}

// CatalogService looks up fragrances in the structured source with caching
type CatalogService struct {
	cache  domain.CacheRepository
	client domain.CatalogClient
	group  singleflight.Group
	config CatalogServiceConfig
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(cache domain.CacheRepository, client domain.CatalogClient, config CatalogServiceConfig) *CatalogService {
	if config.SearchLimit <= 0 {
		config.SearchLimit = 20
	}
	if config.ResolveLimit <= 0 {
		config.ResolveLimit = 50
	}
	if config.SimilarLimit <= 0 {
		config.SimilarLimit = 15
	}
	if config.MaxSimilar <= 0 {
		config.MaxSimilar = 10
	}

	return &CatalogService{
		cache:  cache,
		client: client,
		config: config,
	}
}

// Search returns hits for a free-text query.
// Flow: length guard -> cache -> remote search -> map -> cache -> return
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return []domain.SearchHit{}, nil
	}

	if cached, ok := cachedValue[[]domain.SearchHit](ctx, s.cache, domain.NamespaceSearch, query); ok {
		return cached, nil
	}

	hits, err := s.client.Search(ctx, query, s.config.SearchLimit)
	if err != nil {
		return nil, err
	}

	results := fragranceapi.MapToSearchHits(hits)
	storeValue(ctx, s.cache, domain.NamespaceSearch, query, results)
	return results, nil
}

// Resolve returns the full record for id. The name hint narrows the remote search;
// the target is picked by exact id, then by name containment, then the first hit.
func (s *CatalogService) Resolve(ctx context.Context, id, nameHint string) (*domain.Fragrance, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	if cached, ok := cachedValue[*domain.Fragrance](ctx, s.cache, domain.NamespaceFragrance, id); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do("resolve:"+id+"\x00"+nameHint, func() (interface{}, error) {
		hits, err := s.client.Search(ctx, strings.TrimSpace(nameHint), s.config.ResolveLimit)
		if err != nil {
			return nil, err
		}

		hit, ok := pickHit(hits, id, nameHint)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}

		fragrance := fragranceapi.MapToFragrance(hit)
		storeValue(ctx, s.cache, domain.NamespaceFragrance, id, fragrance)
		return fragrance, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Fragrance), nil
}

// Similar returns fragrances sharing the first top note (or the brand) of id, excluding id itself
func (s *CatalogService) Similar(ctx context.Context, id, nameHint string) ([]domain.SearchHit, error) {
	if cached, ok := cachedValue[[]domain.SearchHit](ctx, s.cache, domain.NamespaceSimilar, id); ok {
		return cached, nil
	}

	fragrance, err := s.Resolve(ctx, id, nameHint)
	if err != nil {
		return nil, err
	}

	term := fragrance.Brand
	if len(fragrance.TopNotes) > 0 && fragrance.TopNotes[0].Name != "" {
		term = fragrance.TopNotes[0].Name
	}
	if strings.TrimSpace(term) == "" {
		return []domain.SearchHit{}, nil
	}

	hits, err := s.client.Search(ctx, term, s.config.SimilarLimit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchHit, 0, s.config.MaxSimilar)
	for _, hit := range fragranceapi.MapToSearchHits(hits) {
		if hit.ID == id {
			continue
		}
		results = append(results, hit)
		if len(results) == s.config.MaxSimilar {
			break
		}
	}

	storeValue(ctx, s.cache, domain.NamespaceSimilar, id, results)
	return results, nil
}

func pickHit(hits []domain.CatalogHit, id, nameHint string) (domain.CatalogHit, bool) {
	if len(hits) == 0 {
		return domain.CatalogHit{}, false
	}

	for _, h := range hits {
		if strconv.FormatInt(h.ID, 10) == id {
			return h, true
		}
	}

	if hint := strings.ToLower(strings.TrimSpace(nameHint)); hint != "" {
		for _, h := range hits {
			name := strings.ToLower(h.Name)
			if strings.Contains(name, hint) || strings.Contains(hint, name) {
				return h, true
			}
		}
	}

	return hits[0], true
}

// cachedValue reads a typed value; a wrong type is treated as a miss
func cachedValue[T any](ctx context.Context, cache domain.CacheRepository, ns, key string) (T, bool) {
	var zero T
	v, err := cache.Get(ctx, ns, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logging.Warn().Err(err).Str("namespace", ns).Msg("cache read failed")
		}
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// storeValue writes to the cache unless the request was cancelled. Failures are logged, not returned.
func storeValue(ctx context.Context, cache domain.CacheRepository, ns, key string, value interface{}) {
	if ctx.Err() != nil {
		return
	}
	if err := cache.Set(ctx, ns, key, value); err != nil {
		logging.Warn().Err(err).Str("namespace", ns).Str("key", key).Msg("cache write failed")
	}
}
