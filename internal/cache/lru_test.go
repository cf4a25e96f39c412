package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache[V any](t *testing.T, size int, ttl time.Duration) (*LRUWithTTL[string, V], *fakeClock) {
	t.Helper()
	c, err := NewLRUWithTTL[string, V](size, ttl)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c.now = clock.now
	return c, clock
}

func TestLRUWithTTL_BasicOperations(t *testing.T) {
	cache, _ := newTestCache[int](t, 3, 0)

	cache.Set("cat", 42)
	if val, ok := cache.Get("cat"); !ok || val != 42 {
		t.Errorf("Get(cat) = (%v, %v), want (42, true)", val, ok)
	}

	if _, ok := cache.Get("nonexistent"); ok {
		t.Error("Get(nonexistent) should return false")
	}

	cache.Set("hat", 100)
	cache.Set("mat", 200)
	cache.Set("dog", 300) // evicts cat

	if _, ok := cache.Get("cat"); ok {
		t.Error("cat should have been evicted")
	}
	if val, ok := cache.Get("dog"); !ok || val != 300 {
		t.Errorf("Get(dog) = (%v, %v), want (300, true)", val, ok)
	}
	if stats := cache.Stats(); stats.Evicted != 1 {
		t.Errorf("Stats.Evicted = %d, want 1", stats.Evicted)
	}
}

func TestLRUWithTTL_InvalidSize(t *testing.T) {
	if _, err := NewLRUWithTTL[string, int](0, 0); err == nil {
		t.Error("NewLRUWithTTL(0) should fail")
	}
}

func TestLRUWithTTL_Expiration(t *testing.T) {
	cache, clock := newTestCache[string](t, 10, time.Minute)

	cache.Set("light", "L AY1 T")

	if _, ok := cache.Get("light"); !ok {
		t.Error("light should be present before expiration")
	}

	clock.advance(2 * time.Minute)

	if _, ok := cache.Get("light"); ok {
		t.Error("light should have expired")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, expired entry should be removed on access", cache.Len())
	}
}

func TestLRUWithTTL_Stats(t *testing.T) {
	cache, _ := newTestCache[int](t, 5, 0)

	cache.Set("key1", 1)
	cache.Set("key2", 2)

	cache.Get("key1")    // hit
	cache.Get("key1")    // hit
	cache.Get("missing") // miss

	stats := cache.Stats()
	if stats.Hits != 2 {
		t.Errorf("Stats.Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Stats.Misses = %d, want 1", stats.Misses)
	}
	if stats.Size != 2 {
		t.Errorf("Stats.Size = %d, want 2", stats.Size)
	}

	expectedHitRate := 2.0 / 3.0
	if stats.HitRate < expectedHitRate-0.01 || stats.HitRate > expectedHitRate+0.01 {
		t.Errorf("Stats.HitRate = %f, want ~%f", stats.HitRate, expectedHitRate)
	}
}

func TestLRUWithTTL_GetOrLoad(t *testing.T) {
	cache, _ := newTestCache[string](t, 5, 0)

	calls := 0
	load := func() (string, bool) {
		calls++
		return "K AE1 T", true
	}

	if v := cache.GetOrLoad("cat", load); v != "K AE1 T" {
		t.Errorf("GetOrLoad = %q", v)
	}
	if v := cache.GetOrLoad("cat", load); v != "K AE1 T" {
		t.Errorf("GetOrLoad (cached) = %q", v)
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	transient := func() (string, bool) {
		calls++
		return "", false
	}
	cache.GetOrLoad("flaky", transient)
	cache.GetOrLoad("flaky", transient)
	if calls != 3 {
		t.Errorf("uncached load should run every time, calls = %d", calls)
	}
}

func TestLRUWithTTL_Clear(t *testing.T) {
	cache, _ := newTestCache[int](t, 5, 0)

	cache.Set("key1", 1)
	cache.Set("key2", 2)
	cache.Set("key3", 3)

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len() = %d after Clear(), want 0", cache.Len())
	}
}

func TestLRUWithTTL_CleanupExpired(t *testing.T) {
	cache, clock := newTestCache[int](t, 10, 50*time.Millisecond)

	cache.Set("key1", 1)
	cache.Set("key2", 2)
	clock.advance(100 * time.Millisecond)
	cache.Set("key3", 3)

	removed := cache.CleanupExpired()
	if removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", cache.Len())
	}
}

func TestLRUWithTTL_CleanupWithoutTTL(t *testing.T) {
	cache, _ := newTestCache[int](t, 10, 0)
	cache.Set("key1", 1)
	if removed := cache.CleanupExpired(); removed != 0 {
		t.Errorf("CleanupExpired() = %d with no TTL, want 0", removed)
	}
}
