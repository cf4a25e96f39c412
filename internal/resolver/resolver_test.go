package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractal-lba/rhymer/internal/dictionary"
	"github.com/fractal-lba/rhymer/internal/metrics"
	"github.com/fractal-lba/rhymer/pkg/phonetic"
)

var testDict = map[string][]string{
	"cat":   {"K AE1 T"},
	"hat":   {"HH AE1 T"},
	"read":  {"R EH1 D", "R IY1 D"},
	"light": {"L AY1 T"},
	"blank": {"   "},
	"it":    {"IH1 T"},
}

type countingSource struct {
	mu    sync.Mutex
	inner dictionary.Source
	calls map[string]int
}

func newCounting(entries map[string][]string) *countingSource {
	return &countingSource{inner: dictionary.NewMemory(entries), calls: map[string]int{}}
}

func (c *countingSource) Lookup(ctx context.Context, word string) ([]string, error) {
	c.mu.Lock()
	c.calls[word]++
	c.mu.Unlock()
	return c.inner.Lookup(ctx, word)
}

func (c *countingSource) Close() error { return nil }

func (c *countingSource) count(word string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[word]
}

func newTestResolver(t *testing.T, src dictionary.Source, opts Options) *Resolver {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r, err := New(src, opts)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t, dictionary.NewMemory(testDict), Options{})
	ctx := context.Background()

	tests := []struct {
		name   string
		word   string
		want   phonetic.Pronunciation
		wantOK bool
	}{
		{name: "known word", word: "cat", want: phonetic.Pronunciation{"K", "AE1", "T"}, wantOK: true},
		{name: "first candidate wins", word: "read", want: phonetic.Pronunciation{"R", "EH1", "D"}, wantOK: true},
		{name: "unknown word", word: "catt", wantOK: false},
		{name: "short word skipped even if known", word: "it", wantOK: false},
		{name: "malformed entry dropped", word: "blank", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(ctx, tt.word)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ShortWordsNeverQueried(t *testing.T) {
	src := newCounting(testDict)
	r := newTestResolver(t, src, Options{})

	for _, w := range []string{"a", "to", "it"} {
		_, ok := r.Resolve(context.Background(), w)
		assert.False(t, ok, w)
		assert.Zero(t, src.count(w), w)
	}
}

func TestResolve_CachesHitsAndMisses(t *testing.T) {
	src := newCounting(testDict)
	m := metrics.New(prometheus.NewRegistry())
	r := newTestResolver(t, src, Options{Metrics: m})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r.Resolve(ctx, "cat")
		r.Resolve(ctx, "catt")
	}

	assert.Equal(t, 1, src.count("cat"))
	assert.Equal(t, 1, src.count("catt"))
	assert.Equal(t, uint64(4), r.CacheStats().Hits)
	assert.Equal(t, float64(4), testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.LookupHit)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.LookupMiss)))
}

func TestResolve_FaultsAreSwallowedAndRetried(t *testing.T) {
	calls := 0
	src := dictionary.Func(func(context.Context, string) ([]string, error) {
		calls++
		return nil, errors.New("dictionary unavailable")
	})
	m := metrics.New(prometheus.NewRegistry())
	r := newTestResolver(t, src, Options{Metrics: m})

	for i := 0; i < 2; i++ {
		_, ok := r.Resolve(context.Background(), "cat")
		assert.False(t, ok)
	}
	assert.Equal(t, 2, calls, "faults are not cached")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.LookupFault)))
}

func TestResolve_PanicIsRecovered(t *testing.T) {
	src := dictionary.Func(func(_ context.Context, word string) ([]string, error) {
		if word == "boom" {
			panic("corrupt index")
		}
		return []string{"K AE1 T"}, nil
	})
	r := newTestResolver(t, src, Options{})

	_, ok := r.Resolve(context.Background(), "boom")
	assert.False(t, ok)

	phones, ok := r.Resolve(context.Background(), "cat")
	assert.True(t, ok)
	assert.Equal(t, "K AE1 T", phones.String())
}

func TestResolve_MalformedErrorIsMiss(t *testing.T) {
	src := dictionary.Func(func(context.Context, string) ([]string, error) {
		return nil, dictionary.ErrMalformedEntry
	})
	m := metrics.New(prometheus.NewRegistry())
	r := newTestResolver(t, src, Options{Metrics: m})

	_, ok := r.Resolve(context.Background(), "cat")
	assert.False(t, ok)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.LookupMalformed)))
}

func TestResolveAll(t *testing.T) {
	for _, workers := range []int{1, 4, 0} {
		src := newCounting(testDict)
		r := newTestResolver(t, src, Options{Workers: workers})

		words := []string{"cat", "hat", "cat", "it", "catt", "light", "cat"}
		got, err := r.ResolveAll(context.Background(), words)
		require.NoError(t, err)

		assert.Len(t, got, 3)
		assert.Equal(t, "K AE1 T", got["cat"].String())
		assert.Equal(t, "HH AE1 T", got["hat"].String())
		assert.Equal(t, "L AY1 T", got["light"].String())
		assert.NotContains(t, got, "it")
		assert.NotContains(t, got, "catt")
		assert.Equal(t, 1, src.count("cat"), "each distinct word looked up once")
	}
}

func TestResolveAll_CancelledContext(t *testing.T) {
	r := newTestResolver(t, dictionary.NewMemory(testDict), Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveAll(ctx, []string{"cat", "hat"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_NilSource(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestResolve_ExpiredEntriesSwept(t *testing.T) {
	src := newCounting(testDict)
	r := newTestResolver(t, src, Options{CacheTTL: 20 * time.Millisecond, SweepInterval: 5 * time.Millisecond})

	_, ok := r.Resolve(context.Background(), "cat")
	require.True(t, ok)
	assert.Equal(t, 1, r.CacheStats().Size)

	require.Eventually(t, func() bool { return r.CacheStats().Size == 0 }, time.Second, 5*time.Millisecond)

	_, ok = r.Resolve(context.Background(), "cat")
	require.True(t, ok)
	assert.Equal(t, 2, src.count("cat"), "expired entries are looked up again")
}

func TestClose_Idempotent(t *testing.T) {
	r, err := New(dictionary.NewMemory(testDict), Options{CacheTTL: time.Minute})
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
