// Package resolver maps words to a single pronunciation using a dictionary.
//
// Resolution is best-effort: short words are skipped, unknown words are
// dropped, and any fault from the dictionary (error, malformed entry, panic)
// is treated as "no pronunciation" so one bad word never aborts a pass.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fractal-lba/rhymer/internal/cache"
	"github.com/fractal-lba/rhymer/internal/dictionary"
	"github.com/fractal-lba/rhymer/internal/metrics"
	"github.com/fractal-lba/rhymer/pkg/phonetic"
	"github.com/fractal-lba/rhymer/pkg/text"
)

const (
	DefaultMinWordLength = 3
	DefaultCacheSize     = 50_000
)

// Options configures a Resolver. Zero values select defaults.
type Options struct {
	MinWordLength int
	// Workers bounds concurrent dictionary lookups in ResolveAll.
	// 1 resolves sequentially; 0 uses GOMAXPROCS.
	Workers   int
	CacheSize int
	CacheTTL  time.Duration
	// SweepInterval is how often expired cache entries are purged.
	// Defaults to CacheTTL; unused when CacheTTL is 0.
	SweepInterval time.Duration
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// Resolver picks the first dictionary pronunciation for a word.
type Resolver struct {
	src     dictionary.Source
	cache   *cache.LRUWithTTL[string, cached]
	minLen  int
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type cached struct {
	phones phonetic.Pronunciation
	ok     bool
}

// New creates a Resolver over src.
func New(src dictionary.Source, opts Options) (*Resolver, error) {
	if src == nil {
		return nil, errors.New("resolver: nil dictionary source")
	}
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = DefaultMinWordLength
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c, err := cache.NewLRUWithTTL[string, cached](opts.CacheSize, opts.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("resolver cache: %w", err)
	}

	r := &Resolver{
		src:     src,
		cache:   c,
		minLen:  opts.MinWordLength,
		workers: opts.Workers,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		stopCh:  make(chan struct{}),
	}

	if opts.CacheTTL > 0 {
		interval := opts.SweepInterval
		if interval <= 0 {
			interval = opts.CacheTTL
		}
		r.wg.Add(1)
		go r.sweepLoop(interval)
	}

	return r, nil
}

// sweepLoop purges expired pronunciations until Close.
func (r *Resolver) sweepLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if n := r.cache.CleanupExpired(); n > 0 {
				r.logger.Debug("expired pronunciations purged", "count", n)
			}
		}
	}
}

// Eligible reports whether word is long enough to be resolved.
func (r *Resolver) Eligible(word string) bool {
	return text.RuneLen(word) >= r.minLen
}

// Resolve returns the first pronunciation of a lowercased word, or false if
// the word is too short, unknown, or the dictionary failed.
func (r *Resolver) Resolve(ctx context.Context, word string) (phonetic.Pronunciation, bool) {
	if !r.Eligible(word) {
		r.metrics.ObserveLookup(metrics.LookupSkipped)
		return nil, false
	}

	loaded := false
	c := r.cache.GetOrLoad(word, func() (cached, bool) {
		loaded = true
		phones, result, err := r.lookup(ctx, word)
		r.metrics.ObserveLookup(result)
		if err != nil {
			r.logger.Debug("pronunciation lookup failed", "word", word, "result", result, "error", err)
		}
		// Faults are not cached: the next pass retries.
		return cached{phones: phones, ok: phones != nil}, result != metrics.LookupFault
	})
	r.metrics.ObserveCache(!loaded)

	return c.phones, c.ok
}

// lookup queries the source and classifies the outcome.
func (r *Resolver) lookup(ctx context.Context, word string) (phones phonetic.Pronunciation, result string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			phones, result, err = nil, metrics.LookupFault, fmt.Errorf("dictionary panic: %v", rec)
		}
	}()

	candidates, err := r.src.Lookup(ctx, word)
	if err != nil {
		if errors.Is(err, dictionary.ErrMalformedEntry) {
			return nil, metrics.LookupMalformed, err
		}
		return nil, metrics.LookupFault, err
	}
	if len(candidates) == 0 {
		return nil, metrics.LookupMiss, nil
	}

	phones = phonetic.ParsePhones(candidates[0])
	if phones == nil {
		return nil, metrics.LookupMalformed, fmt.Errorf("%w: empty transcription for %q", dictionary.ErrMalformedEntry, word)
	}
	return phones, metrics.LookupHit, nil
}

// ResolveAll resolves each distinct eligible word once and returns the
// pronunciations found. Lookups run on up to Workers goroutines; the result
// does not depend on scheduling. It fails only if ctx is done.
func (r *Resolver) ResolveAll(ctx context.Context, words []string) (map[string]phonetic.Pronunciation, error) {
	distinct := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		distinct = append(distinct, w)
	}

	results := make([]phonetic.Pronunciation, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, w := range distinct {
		i, w := i, w
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if phones, ok := r.Resolve(gctx, w); ok {
				results[i] = phones
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]phonetic.Pronunciation, len(distinct))
	for i, w := range distinct {
		if results[i] != nil {
			out[w] = results[i]
		}
	}
	return out, nil
}

// CacheStats exposes the pronunciation cache counters.
func (r *Resolver) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// Close stops the expiry sweep and releases the cache. The dictionary
// source is owned by the caller.
func (r *Resolver) Close() error {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
	return r.cache.Close()
}
