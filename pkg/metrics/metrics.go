// Package metrics defines the Prometheus metric collectors used by the
// translation services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	TranslationsTotal      *prometheus.CounterVec
	TranslationLatency     *prometheus.HistogramVec
	TranslationTokens      prometheus.Histogram
	UnmatchedCharsTotal    prometheus.Counter
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	PairsSavedTotal        *prometheus.CounterVec
	EventsPublishedTotal   *prometheus.CounterVec
	SymbolTableSize        prometheus.Gauge
	CircuitBreakerState    *prometheus.GaugeVec
	RateLimitRejectedTotal prometheus.Counter
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the metrics and registers them with reg. Tests
// pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		TranslationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translations_total",
				Help: "Total translations by outcome (clean, warning).",
			},
			[]string{"outcome"},
		),
		TranslationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "translation_latency_seconds",
				Help:    "Translation latency in seconds.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"cache_status"},
		),
		TranslationTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "translation_tokens",
				Help:    "Number of tokens produced per translation.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		UnmatchedCharsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "unmatched_chars_total",
				Help: "Characters passed through because no token matched.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of translation cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of translation cache misses.",
			},
		),
		PairsSavedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairs_saved_total",
				Help: "Translation pairs persisted by status.",
			},
			[]string{"status"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "Kafka events published by topic and status.",
			},
			[]string{"topic", "status"},
		),
		SymbolTableSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "symbol_table_tokens",
				Help: "Number of distinct tokens in the loaded symbol table.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
		RateLimitRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_rejected_total",
				Help: "Requests rejected by the per-client rate limiter.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.TranslationsTotal,
		m.TranslationLatency,
		m.TranslationTokens,
		m.UnmatchedCharsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PairsSavedTotal,
		m.EventsPublishedTotal,
		m.SymbolTableSize,
		m.CircuitBreakerState,
		m.RateLimitRejectedTotal,
	)

	return m
}

// ObserveTranslation records one translation outcome.
func (m *Metrics) ObserveTranslation(seconds float64, cacheHit bool, tokens, unmatched int) {
	outcome := "clean"
	if unmatched > 0 {
		outcome = "warning"
	}
	m.TranslationsTotal.WithLabelValues(outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
	m.TranslationLatency.WithLabelValues(cacheStatus).Observe(seconds)
	m.TranslationTokens.Observe(float64(tokens))
	m.UnmatchedCharsTotal.Add(float64(unmatched))
}

// Handler returns the Prometheus scrape HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
