package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup result labels.
const (
	LookupHit       = "hit"
	LookupMiss      = "miss"
	LookupMalformed = "malformed"
	LookupFault     = "fault"
	LookupSkipped   = "skipped"
)

// Metrics holds all Prometheus collectors for the rhyme engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Passes        prometheus.Counter
	PassFailures  prometheus.Counter
	PassDuration  prometheus.Histogram
	Groups        prometheus.Gauge
	Spans         prometheus.Gauge
	Lookups       *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// New creates and registers all metrics on reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Passes: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymer_passes_total",
			Help: "Total number of highlight passes completed",
		}),
		PassFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymer_pass_failures_total",
			Help: "Number of highlight passes that failed and left highlighting stale",
		}),
		PassDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rhymer_pass_duration_seconds",
			Help:    "Wall time of a full highlight pass",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		Groups: f.NewGauge(prometheus.GaugeOpts{
			Name: "rhymer_groups",
			Help: "Rhyme groups in the last published pass",
		}),
		Spans: f.NewGauge(prometheus.GaugeOpts{
			Name: "rhymer_spans",
			Help: "Highlight spans in the last published pass",
		}),
		Lookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rhymer_lookups_total",
				Help: "Pronunciation lookups by result",
			},
			[]string{"result"},
		),
		CacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rhymer_cache_requests_total",
				Help: "Pronunciation cache requests by result",
			},
			[]string{"result"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rhymer_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// ObserveLookup counts one lookup outcome.
func (m *Metrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(result).Inc()
}

// ObserveCache counts one cache request.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheRequests.WithLabelValues("hit").Inc()
		return
	}
	m.CacheRequests.WithLabelValues("miss").Inc()
}

// ObservePass records a completed pass, published or not.
func (m *Metrics) ObservePass(d time.Duration) {
	if m == nil {
		return
	}
	m.Passes.Inc()
	m.PassDuration.Observe(d.Seconds())
}

// ObservePublished sets the gauges describing the published result.
func (m *Metrics) ObservePublished(groups, spans int) {
	if m == nil {
		return
	}
	m.Groups.Set(float64(groups))
	m.Spans.Set(float64(spans))
}

// ObserveFailure records a failed pass.
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.PassFailures.Inc()
}

// ObserveHTTP counts one HTTP response.
func (m *Metrics) ObserveHTTP(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
