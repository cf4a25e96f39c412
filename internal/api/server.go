package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/fractal-lba/rhymer/internal/engine"
	"github.com/fractal-lba/rhymer/internal/metrics"
	"github.com/fractal-lba/rhymer/pkg/otel"
)

const tracerName = "github.com/fractal-lba/rhymer/internal/api"

// DefaultMaxBodyBytes bounds a highlight request body.
const DefaultMaxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	MaxBodyBytes int64
	// Limiter throttles /v1 routes. Nil disables rate limiting.
	Limiter *rate.Limiter
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; defaults to prometheus.DefaultGatherer.
	Gatherer        prometheus.Gatherer
	MetricsUser     string
	MetricsPassword string
	Logger          *slog.Logger
}

// Server exposes the engine over HTTP.
type Server struct {
	engine *engine.Engine
	opts   Options
	logger *slog.Logger
}

func NewServer(eng *engine.Engine, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{engine: eng, opts: opts, logger: opts.Logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/highlight", s.instrument("/v1/highlight", s.handleHighlight))
	mux.Handle("/v1/rhymekey", s.instrument("/v1/rhymekey", s.handleRhymeKey))
	mux.Handle("/metrics", s.metricsHandler())
	mux.HandleFunc("/health", handleHealth)
	return mux
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.allow(w) {
		return
	}

	var req HighlightRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := s.engine.Compute(r.Context(), req.Text)
	if err != nil {
		if r.Context().Err() != nil {
			writeError(w, http.StatusServiceUnavailable, "request cancelled")
			return
		}
		writeError(w, http.StatusInternalServerError, "highlight failed")
		return
	}

	writeJSON(w, http.StatusOK, FromResult(res))
}

func (s *Server) handleRhymeKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.allow(w) {
		return
	}

	word := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("word")))
	if word == "" {
		writeError(w, http.StatusBadRequest, "missing word parameter")
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(otel.AttrWord.String(word))

	phones, ok := s.engine.Resolver().Resolve(r.Context(), word)
	if !ok {
		writeError(w, http.StatusNotFound, "no pronunciation for "+strconv.Quote(word))
		return
	}

	writeJSON(w, http.StatusOK, NewRhymeKeyResponse(word, phones))
}

func (s *Server) allow(w http.ResponseWriter) bool {
	if s.opts.Limiter == nil || s.opts.Limiter.Allow() {
		return true
	}
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusTooManyRequests, "too many requests")
	return false
}

func (s *Server) metricsHandler() http.Handler {
	handler := promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})

	if s.opts.MetricsUser == "" {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.opts.MetricsUser || pass != s.opts.MetricsPassword {
			w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

// instrument traces a route and counts responses by status code.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := otel.StartSpan(r.Context(), tracerName, r.Method+" "+route, otel.AttrRoute.String(route))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r.WithContext(ctx))

		s.opts.Metrics.ObserveHTTP(route, strconv.Itoa(rec.status))
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", "route", route, "status", rec.status)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
