package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/fractal-lba/rhymer/internal/api"
	"github.com/fractal-lba/rhymer/internal/app"
	"github.com/fractal-lba/rhymer/internal/config"
	"github.com/fractal-lba/rhymer/internal/logging"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.New(config.LogConfig{}).Error("load config", "error", err)
		return err
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("start rhyme engine", "error", err)
		return err
	}

	srv := api.NewServer(a.Engine, api.Options{
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Limiter:         rate.NewLimiter(rate.Limit(cfg.Server.TokenRate), cfg.Server.TokenBurst),
		Metrics:         a.Metrics,
		Gatherer:        a.Registry,
		MetricsUser:     cfg.Server.MetricsUser,
		MetricsPassword: cfg.Server.MetricsPassword,
		Logger:          logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", "error", err)
			_ = a.Close(context.Background())
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.Error("close resources", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
