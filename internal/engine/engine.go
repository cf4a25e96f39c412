// Package engine runs complete rhyme highlighting passes:
//
//	text -> tokens -> pronunciations -> rhyme keys -> groups -> colors -> spans
//
// A pass is computed from scratch and published atomically. A failed pass
// leaves the previously published result in place.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/fractal-lba/rhymer/internal/highlight"
	"github.com/fractal-lba/rhymer/internal/metrics"
	"github.com/fractal-lba/rhymer/internal/resolver"
	"github.com/fractal-lba/rhymer/internal/rhyme"
	"github.com/fractal-lba/rhymer/pkg/otel"
	"github.com/fractal-lba/rhymer/pkg/palette"
	"github.com/fractal-lba/rhymer/pkg/phonetic"
	"github.com/fractal-lba/rhymer/pkg/text"
)

const tracerName = "github.com/fractal-lba/rhymer/internal/engine"

// Result is the output of one pass.
type Result struct {
	PassID     string                 `json:"pass_id"`
	Tokens     int                    `json:"tokens"`
	Groups     []rhyme.Group          `json:"groups"`
	Colors     []palette.RGB          `json:"colors"`
	WordColors highlight.WordColorMap `json:"word_colors"`
	Spans      []highlight.Span       `json:"spans"`
	Duration   time.Duration          `json:"duration"`
}

// Options configures an Engine.
type Options struct {
	Palette palette.Generator
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Engine computes passes and owns the published result.
type Engine struct {
	resolver *resolver.Resolver
	palette  palette.Generator
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pub      Publisher
}

// New creates an Engine using res for pronunciations.
func New(res *resolver.Resolver, opts Options) *Engine {
	if opts.Palette == (palette.Generator{}) {
		opts.Palette = palette.Default
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		resolver: res,
		palette:  opts.Palette,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

// Run computes a pass over doc and publishes it. On failure (including a
// panic anywhere in the pass) the error is logged and returned, and the
// previously published result is kept.
func (e *Engine) Run(ctx context.Context, doc string) (*Result, error) {
	return e.pass(ctx, doc, true)
}

// Compute runs a traced, measured pass without publishing it. Used where
// each caller owns its result, such as HTTP requests.
func (e *Engine) Compute(ctx context.Context, doc string) (*Result, error) {
	return e.pass(ctx, doc, false)
}

func (e *Engine) pass(ctx context.Context, doc string, publish bool) (*Result, error) {
	passID := uuid.NewString()
	ctx, span := otel.StartSpan(ctx, tracerName, "rhymer.pass", otel.AttrPassID.String(passID))
	defer span.End()

	res, err := e.compute(ctx, passID, doc)
	if err != nil {
		e.metrics.ObserveFailure()
		otel.RecordError(span, err, "pass failed")
		e.logger.Error("rhyme pass failed", "pass_id", passID, "kept_previous", publish, "error", err)
		return nil, err
	}

	e.metrics.ObservePass(res.Duration)
	if publish {
		e.pub.Publish(res)
		e.metrics.ObservePublished(len(res.Groups), len(res.Spans))
	}
	span.SetAttributes(otel.PassAttributes(res.Tokens, len(res.Groups), len(res.Spans))...)
	e.logger.Debug("rhyme pass done",
		"pass_id", passID,
		"published", publish,
		"tokens", res.Tokens,
		"groups", len(res.Groups),
		"spans", len(res.Spans),
		"duration", res.Duration,
	)
	return res, nil
}

func (e *Engine) compute(ctx context.Context, passID, doc string) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = fmt.Errorf("pass %s panicked: %v\n%s", passID, rec, debug.Stack())
		}
	}()

	start := time.Now()

	tokens := text.Tokenize(doc)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}

	prons, err := e.resolver.ResolveAll(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("resolve pronunciations: %w", err)
	}

	pairs := make([]rhyme.Pair, 0, len(prons))
	for _, w := range words {
		p, ok := prons[w]
		if !ok {
			continue
		}
		key, ok := phonetic.RhymeKey(p)
		if !ok {
			continue
		}
		pairs = append(pairs, rhyme.Pair{Word: w, Key: key})
	}

	groups := rhyme.Bucket(pairs)
	colors := e.palette.Generate(len(groups))
	wordColors := highlight.WordColors(groups, colors)
	spans := highlight.ProjectTokens(tokens, wordColors)

	return &Result{
		PassID:     passID,
		Tokens:     len(tokens),
		Groups:     groups,
		Colors:     colors,
		WordColors: wordColors,
		Spans:      spans,
		Duration:   time.Since(start),
	}, nil
}

// Current returns the last published result, or nil before the first pass.
func (e *Engine) Current() *Result {
	return e.pub.Current()
}

// Resolver returns the engine's pronunciation resolver.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}
