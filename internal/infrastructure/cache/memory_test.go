package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scentpair/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "store and retrieve string", key: "k1", value: "value"},
		{name: "store and retrieve struct pointer", key: "k2", value: &domain.Fragrance{ID: "42", Name: "Aventus"}},
		{name: "store and retrieve slice", key: "k3", value: []domain.SearchHit{{ID: "1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, tt.key, tt.value))

			got, err := cache.Get(ctx, domain.NamespaceSearch, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache(nil)

	_, err := cache.Get(context.Background(), domain.NamespaceFragrance, "absent")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_NamespacesAreIsolated(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceFragrance, "42", "structured"))
	require.NoError(t, cache.Set(ctx, domain.NamespaceScrapeFragrance, "42", "scraped"))

	got, err := cache.Get(ctx, domain.NamespaceFragrance, "42")
	require.NoError(t, err)
	assert.Equal(t, "structured", got)

	got, err = cache.Get(ctx, domain.NamespaceScrapeFragrance, "42")
	require.NoError(t, err)
	assert.Equal(t, "scraped", got)

	_, err = cache.Get(ctx, domain.NamespaceSimilar, "42")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_TTLPerNamespace(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(map[string]Policy{
		domain.NamespaceSearch:       {TTL: 30 * time.Minute},
		domain.NamespaceScrapeSearch: {TTL: time.Hour},
	}, WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, "q", "short"))
	require.NoError(t, cache.Set(ctx, domain.NamespaceScrapeSearch, "q", "long"))

	// Exactly at the TTL boundary the entry is still fresh
	clock.Advance(30 * time.Minute)
	_, err := cache.Get(ctx, domain.NamespaceSearch, "q")
	assert.NoError(t, err)

	clock.Advance(time.Second)
	_, err = cache.Get(ctx, domain.NamespaceSearch, "q")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	got, err := cache.Get(ctx, domain.NamespaceScrapeSearch, "q")
	require.NoError(t, err)
	assert.Equal(t, "long", got)

	clock.Advance(30 * time.Minute)
	_, err = cache.Get(ctx, domain.NamespaceScrapeSearch, "q")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_OverwriteRestartsTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(map[string]Policy{
		domain.NamespaceFragrance: {TTL: time.Minute},
	}, WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceFragrance, "id", "v1"))
	clock.Advance(50 * time.Second)
	require.NoError(t, cache.Set(ctx, domain.NamespaceFragrance, "id", "v2"))
	clock.Advance(50 * time.Second)

	got, err := cache.Get(ctx, domain.NamespaceFragrance, "id")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestMemoryCache_ExpiredEntryIsDropped(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(map[string]Policy{
		domain.NamespaceSimilar: {TTL: time.Minute},
	}, WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceSimilar, "id", "v"))
	assert.Equal(t, 1, cache.Size(domain.NamespaceSimilar))

	clock.Advance(2 * time.Minute)
	_, err := cache.Get(ctx, domain.NamespaceSimilar, "id")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, cache.Size(domain.NamespaceSimilar))
}

func TestMemoryCache_MaxEntriesEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(map[string]Policy{
		domain.NamespaceSearch: {TTL: time.Hour, MaxEntries: 2},
	})
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, "a", 1))
	require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, "b", 2))

	// Touch "a" so "b" becomes the eviction candidate
	_, err := cache.Get(ctx, domain.NamespaceSearch, "a")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, "c", 3))

	assert.Equal(t, 2, cache.Size(domain.NamespaceSearch))
	_, err = cache.Get(ctx, domain.NamespaceSearch, "b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = cache.Get(ctx, domain.NamespaceSearch, "a")
	assert.NoError(t, err)
	_, err = cache.Get(ctx, domain.NamespaceSearch, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, "k", "v"))
	require.NoError(t, cache.Delete(ctx, domain.NamespaceSearch, "k"))

	_, err := cache.Get(ctx, domain.NamespaceSearch, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// Deleting an unknown key is not an error
	assert.NoError(t, cache.Delete(ctx, "unknown", "k"))
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.NamespaceSearch, "k", "v"))
	require.NoError(t, cache.Set(ctx, domain.NamespaceSimilar, "k", "v"))
	cache.Clear()

	assert.Equal(t, 0, cache.Size(domain.NamespaceSearch))
	assert.Equal(t, 0, cache.Size(domain.NamespaceSimilar))
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(map[string]Policy{
		domain.NamespaceFragrance: {TTL: time.Minute, MaxEntries: 50},
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (n+j)%26))
				_ = cache.Set(ctx, domain.NamespaceFragrance, key, j)
				_, _ = cache.Get(ctx, domain.NamespaceFragrance, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Size(domain.NamespaceFragrance), 50)
}
