package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
)

const metricsNamespace = "daily_pick"

var circuitStateValues = map[resilience.CircuitState]float64{
	resilience.CircuitStateClosed:   0,
	resilience.CircuitStateHalfOpen: 1,
	resilience.CircuitStateOpen:     2,
}

// Metrics exports scoring-engine, HTTP and circuit breaker measurements to Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	projections         *prometheus.CounterVec
	sportsbookCache     *prometheus.CounterVec
	pickResults         *prometheus.CounterVec
	scoringRuns         prometheus.Counter
	scoringPicks        *prometheus.CounterVec
	scoringRunDuration  prometheus.Histogram
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	breakerState        *prometheus.GaugeVec
	breakerTransitions  *prometheus.CounterVec
}

type MetricsOption func(*prometheus.Registry)

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() MetricsOption {
	return func(r *prometheus.Registry) {
		r.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewMetrics registers every collector on a private registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	registry := prometheus.NewRegistry()
	for _, opt := range opts {
		opt(registry)
	}
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		projections: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "projections_total",
			Help:      "Projection attempts by projection source and outcome.",
		}, []string{"source", "outcome"}),
		sportsbookCache: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sportsbook_cache_lookups_total",
			Help:      "Sportsbook line cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		pickResults: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pick_results_total",
			Help:      "Pick results written by status and reason.",
		}, []string{"status", "reason"}),
		scoringRuns: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_runs_total",
			Help:      "Completed group-day scoring runs.",
		}),
		scoringPicks: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_run_picks_total",
			Help:      "Picks processed by scoring runs, split into scored and unscored.",
		}, []string{"state"}),
		scoringRunDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_run_duration_seconds",
			Help:      "Wall time of a group-day scoring run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		breakerState: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "circuit_breaker_state",
			Help:      "Upstream circuit breaker state: 0 closed, 1 half open, 2 open.",
		}, []string{"upstream"}),
		breakerTransitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Upstream circuit breaker state changes by target state.",
		}, []string{"upstream", "to"}),
	}
}

func (m *Metrics) ObserveProjection(source, outcome string) {
	m.projections.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) ObserveSportsbookCache(provider string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.sportsbookCache.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) ObservePickResult(status, reason string) {
	if reason == "" {
		reason = "none"
	}
	m.pickResults.WithLabelValues(status, reason).Inc()
}

func (m *Metrics) ObserveScoringRun(scored, unscored int, duration time.Duration) {
	m.scoringRuns.Inc()
	m.scoringPicks.WithLabelValues("scored").Add(float64(scored))
	m.scoringPicks.WithLabelValues("unscored").Add(float64(unscored))
	m.scoringRunDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// BreakerListener returns a resilience.StateListener that tracks one upstream.
// The gauge starts at closed so the series exists before the first transition.
func (m *Metrics) BreakerListener(upstream string) resilience.StateListener {
	m.breakerState.WithLabelValues(upstream).Set(circuitStateValues[resilience.CircuitStateClosed])
	return func(_, to resilience.CircuitState) {
		m.breakerState.WithLabelValues(upstream).Set(circuitStateValues[to])
		m.breakerTransitions.WithLabelValues(upstream, string(to)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
