// Package app assembles the rhyme engine and its collaborators from
// configuration. Both the HTTP server and the CLI start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fractal-lba/rhymer/internal/config"
	"github.com/fractal-lba/rhymer/internal/dictionary"
	"github.com/fractal-lba/rhymer/internal/engine"
	"github.com/fractal-lba/rhymer/internal/metrics"
	"github.com/fractal-lba/rhymer/internal/resolver"
	"github.com/fractal-lba/rhymer/pkg/otel"
	"github.com/fractal-lba/rhymer/pkg/palette"
)

const tracerName = "github.com/fractal-lba/rhymer/internal/app"

// App owns every long-lived component. Close releases them in reverse order.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Source   dictionary.Source
	Resolver *resolver.Resolver
	Engine   *engine.Engine

	tracer *sdktrace.TracerProvider
}

// New builds an App. Tracing is started only when cfg.Tracing.Enabled.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	if cfg.Tracing.Enabled {
		tcfg := otel.DefaultConfig("rhymer")
		tcfg.CollectorEndpoint = cfg.Tracing.Endpoint
		tcfg.CollectorInsecure = cfg.Tracing.Insecure
		tcfg.SamplingRate = cfg.Tracing.SamplingRate
		tcfg.Environment = cfg.Tracing.Environment

		tp, err := otel.InitTracer(ctx, tcfg)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.tracer = tp
	}

	openCtx, span := otel.StartSpan(ctx, tracerName, "rhymer.dictionary.open",
		otel.AttrDictionary.String(cfg.Dictionary.Backend))
	src, err := OpenSource(openCtx, cfg.Dictionary, cfg.Cache.Redis, logger)
	if err != nil {
		otel.RecordError(span, err, "open dictionary")
		span.End()
		_ = a.Close(ctx)
		return nil, err
	}
	span.End()
	a.Source = src

	res, err := resolver.New(src, resolver.Options{
		MinWordLength: cfg.Engine.MinWordLength,
		Workers:       cfg.Engine.Workers,
		CacheSize:     cfg.Cache.Size,
		CacheTTL:      cfg.Cache.TTL,
		Metrics:       a.Metrics,
		Logger:        logger,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("create resolver: %w", err)
	}
	a.Resolver = res

	a.Engine = engine.New(res, engine.Options{
		Palette: palette.Generator{Saturation: cfg.Engine.Saturation, Value: cfg.Engine.Value},
		Metrics: a.Metrics,
		Logger:  logger,
	})

	logger.Info("rhyme engine ready",
		"backend", cfg.Dictionary.Backend,
		"redis", cfg.Cache.Redis.Enabled(),
		"tracing", cfg.Tracing.Enabled,
	)
	return a, nil
}

// OpenSource opens the configured dictionary backend and, when Redis is
// configured, wraps it in a shared read-through cache namespaced by the
// dictionary's identity.
func OpenSource(ctx context.Context, dcfg config.DictionaryConfig, rcfg config.RedisConfig, logger *slog.Logger) (dictionary.Source, error) {
	var (
		src       dictionary.Source
		namespace string
	)

	switch dcfg.Backend {
	case config.BackendMemory:
		m, err := dictionary.Open(dcfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("dictionary loaded", "path", dcfg.Path, "words", m.Len(), "fingerprint", m.Fingerprint())
		src, namespace = m, m.Fingerprint()
	case config.BackendSQLite:
		db, err := dictionary.OpenSQLite(ctx, dcfg.Path)
		if err != nil {
			return nil, err
		}
		src, namespace = db, identity(dcfg.Backend, dcfg.Path)
	case config.BackendPostgres:
		db, err := dictionary.OpenPostgres(ctx, dcfg.DSN)
		if err != nil {
			return nil, err
		}
		src, namespace = db, identity(dcfg.Backend, dcfg.DSN)
	default:
		return nil, fmt.Errorf("unknown dictionary backend %q", dcfg.Backend)
	}

	if !rcfg.Enabled() {
		return src, nil
	}

	cached, err := dictionary.NewRedisCache(src, dictionary.RedisOptions{
		Addr:      rcfg.Addr,
		Password:  rcfg.Password,
		DB:        rcfg.DB,
		TTL:       rcfg.TTL,
		Namespace: namespace,
		Logger:    logger,
	})
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return cached, nil
}

// identity names a database-backed dictionary for cache namespacing.
func identity(backend, location string) string {
	return dictionary.Fingerprint([]byte(backend + "\x00" + location))[:16]
}

// Close stops tracing and releases the dictionary.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Resolver != nil {
		errs = append(errs, a.Resolver.Close())
	}
	if a.Source != nil {
		errs = append(errs, a.Source.Close())
	}
	if a.tracer != nil {
		errs = append(errs, otel.Shutdown(ctx, a.tracer))
	}
	return errors.Join(errs...)
}
