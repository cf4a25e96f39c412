package cache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUWithTTL is a size-bounded, thread-safe LRU cache with optional TTL expiry.
// Hit and miss counters are updated without holding the lock.
type LRUWithTTL[K comparable, V any] struct {
	mu      sync.Mutex
	cache   *lru.Cache[K, ttlEntry[V]]
	ttl     time.Duration
	now     func() time.Time
	hits    atomic.Uint64
	misses  atomic.Uint64
	evicted atomic.Uint64
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewLRUWithTTL creates a cache holding at most size entries.
// A ttl of 0 disables expiry.
func NewLRUWithTTL[K comparable, V any](size int, ttl time.Duration) (*LRUWithTTL[K, V], error) {
	c := &LRUWithTTL[K, V]{
		ttl: ttl,
		now: time.Now,
	}

	inner, err := lru.New[K, ttlEntry[V]](size)
	if err != nil {
		return nil, err
	}
	c.cache = inner

	return c, nil
}

// Get returns the cached value for key if present and not expired.
// Expired entries are removed on access.
func (c *LRUWithTTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	if c.expired(entry) {
		c.cache.Remove(key)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *LRUWithTTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if c.cache.Add(key, ttlEntry[V]{value: value, expiresAt: expiresAt}) {
		c.evicted.Add(1)
	}
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result when cache is true. The lock is not held while load runs, so two
// concurrent callers may both load the same key; the last Set wins.
func (c *LRUWithTTL[K, V]) GetOrLoad(key K, load func() (value V, cache bool)) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	v, keep := load()
	if keep {
		c.Set(key, v)
	}
	return v
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *LRUWithTTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

// Clear removes all entries.
func (c *LRUWithTTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Evicted uint64  `json:"evicted"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns current cache statistics.
func (c *LRUWithTTL[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Evicted: c.evicted.Load(),
		Size:    c.Len(),
		HitRate: hitRate,
	}
}

// Close drops all entries.
func (c *LRUWithTTL[K, V]) Close() error {
	c.Clear()
	return nil
}

// CleanupExpired removes all expired entries and returns how many were removed.
// It is O(n) and meant for an occasional background sweep.
func (c *LRUWithTTL[K, V]) CleanupExpired() int {
	if c.ttl == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.cache.Keys() {
		if entry, ok := c.cache.Peek(key); ok && c.expired(entry) {
			c.cache.Remove(key)
			removed++
		}
	}

	return removed
}

func (c *LRUWithTTL[K, V]) expired(e ttlEntry[V]) bool {
	return c.ttl > 0 && c.now().After(e.expiresAt)
}
