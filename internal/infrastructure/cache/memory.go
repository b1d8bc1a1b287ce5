package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/metrics"
)

// DefaultTTL applies to namespaces without an explicit policy
const DefaultTTL = 30 * time.Minute

// Policy fixes the expiry and optional size bound of one namespace.
// MaxEntries <= 0 leaves the namespace unbounded.
type Policy struct {
	TTL        time.Duration
	MaxEntries int
}

// cacheItem represents a single item in the cache
type cacheItem struct {
	key      string
	value    interface{}
	storedAt time.Time
}

// namespace holds the entries of one data kind, most recently used at the front
type namespace struct {
	policy Policy
	items  map[string]*list.Element
	order  *list.List
}

// MemoryCache is a thread-safe in-memory cache with per-namespace TTL.
// Expired entries are dropped lazily on access; there is no background sweeper.
type MemoryCache struct {
	mutex      sync.Mutex
	policies   map[string]Policy
	namespaces map[string]*namespace
	now        func() time.Time
}

// Option configures a MemoryCache
type Option func(*MemoryCache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache creates a new in-memory cache with the given namespace policies
func NewMemoryCache(policies map[string]Policy, opts ...Option) *MemoryCache {
	c := &MemoryCache{
		policies:   make(map[string]Policy, len(policies)),
		namespaces: make(map[string]*namespace),
		now:        time.Now,
	}
	for name, p := range policies {
		if p.TTL <= 0 {
			p.TTL = DefaultTTL
		}
		c.policies[name] = p
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value. A miss is reported both for absent and expired keys.
func (c *MemoryCache) Get(ctx context.Context, ns, key string) (interface{}, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	space, ok := c.namespaces[ns]
	if !ok {
		metrics.CacheLookups.WithLabelValues(ns, "miss").Inc()
		return nil, domain.ErrCacheMiss
	}

	elem, exists := space.items[key]
	if !exists {
		metrics.CacheLookups.WithLabelValues(ns, "miss").Inc()
		return nil, domain.ErrCacheMiss
	}

	item := elem.Value.(*cacheItem)
	if c.now().Sub(item.storedAt) > space.policy.TTL {
		space.order.Remove(elem)
		delete(space.items, key)
		metrics.CacheLookups.WithLabelValues(ns, "expired").Inc()
		return nil, domain.ErrCacheMiss
	}

	space.order.MoveToFront(elem)
	metrics.CacheLookups.WithLabelValues(ns, "hit").Inc()
	return item.value, nil
}

// Set stores a value, overwriting any previous entry and restarting its TTL
func (c *MemoryCache) Set(ctx context.Context, ns, key string, value interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	space := c.namespace(ns)
	now := c.now()

	if elem, exists := space.items[key]; exists {
		item := elem.Value.(*cacheItem)
		item.value = value
		item.storedAt = now
		space.order.MoveToFront(elem)
		return nil
	}

	space.items[key] = space.order.PushFront(&cacheItem{key: key, value: value, storedAt: now})

	if limit := space.policy.MaxEntries; limit > 0 {
		for space.order.Len() > limit {
			oldest := space.order.Back()
			space.order.Remove(oldest)
			delete(space.items, oldest.Value.(*cacheItem).key)
			metrics.CacheEvictions.WithLabelValues(ns).Inc()
		}
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, ns, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if space, ok := c.namespaces[ns]; ok {
		if elem, exists := space.items[key]; exists {
			space.order.Remove(elem)
			delete(space.items, key)
		}
	}
	return nil
}

// Size returns the number of stored entries in a namespace, expired ones included
func (c *MemoryCache) Size(ns string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if space, ok := c.namespaces[ns]; ok {
		return len(space.items)
	}
	return 0
}

// Clear removes all items from every namespace
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.namespaces = make(map[string]*namespace)
}

// namespace returns the bucket for ns, creating it on first use (must hold mutex)
func (c *MemoryCache) namespace(ns string) *namespace {
	space, ok := c.namespaces[ns]
	if !ok {
		policy, known := c.policies[ns]
		if !known {
			policy = Policy{TTL: DefaultTTL}
		}
		space = &namespace{
			policy: policy,
			items:  make(map[string]*list.Element),
			order:  list.New(),
		}
		c.namespaces[ns] = space
	}
	return space
}
