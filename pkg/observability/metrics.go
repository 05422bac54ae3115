package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insights service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Report source metrics
	SourceQueriesTotal   *prometheus.CounterVec
	SourceQueryDuration  *prometheus.HistogramVec
	SourceFallbacksTotal *prometheus.CounterVec
	EmptyReportsTotal    *prometheus.CounterVec

	// Rollup metrics
	RollupRunsTotal    *prometheus.CounterVec
	RollupDuration     *prometheus.HistogramVec
	RollupRowsUpserted prometheus.Counter

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Rate limit metrics
	RateLimitedTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insights_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SourceQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_source_queries_total",
				Help: "Total number of report source queries",
			},
			[]string{"source", "metric", "outcome"},
		),
		SourceQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insights_source_query_duration_seconds",
				Help:    "Report source query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "metric"},
		),
		SourceFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_source_fallbacks_total",
				Help: "Number of times a report query fell through to a lower-priority source",
			},
			[]string{"from", "to", "metric"},
		),
		EmptyReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_empty_reports_total",
				Help: "Number of report queries where every source was empty or failed",
			},
			[]string{"metric"},
		),
		RollupRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_rollup_runs_total",
				Help: "Total number of stats rollup runs",
			},
			[]string{"granularity", "status"},
		),
		RollupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insights_rollup_duration_seconds",
				Help:    "Stats rollup duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"granularity"},
		),
		RollupRowsUpserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "insights_rollup_rows_upserted_total",
				Help: "Total rows written by stats rollups",
			},
		),
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "insights_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "insights_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_rate_limited_total",
				Help: "Number of requests rejected by the rate limiter",
			},
			[]string{"limiter"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SourceQueriesTotal,
		m.SourceQueryDuration,
		m.SourceFallbacksTotal,
		m.EmptyReportsTotal,
		m.RollupRunsTotal,
		m.RollupDuration,
		m.RollupRowsUpserted,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.RateLimitedTotal,
	)

	return m
}

// Handler returns the Prometheus metrics HTTP handler for a registry
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps an HTTP handler with request metrics
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveSourceQuery records the outcome of one physical source query.
// Safe on a nil receiver so callers without metrics skip recording.
func (m *Metrics) ObserveSourceQuery(source, metric, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SourceQueriesTotal.WithLabelValues(source, metric, outcome).Inc()
	m.SourceQueryDuration.WithLabelValues(source, metric).Observe(elapsed.Seconds())
}

// RecordSourceFallback records one fall-through from a source to the next in
// the chain.
func (m *Metrics) RecordSourceFallback(from, to, metric string) {
	if m == nil {
		return
	}
	m.SourceFallbacksTotal.WithLabelValues(from, to, metric).Inc()
}

// RecordEmptyReport records a report query where no source had data
func (m *Metrics) RecordEmptyReport(metric string) {
	if m == nil {
		return
	}
	m.EmptyReportsTotal.WithLabelValues(metric).Inc()
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
