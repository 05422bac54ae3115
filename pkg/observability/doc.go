// Package observability provides structured logging, Prometheus metrics,
// optional OpenTelemetry tracing, health probes, and graceful shutdown for
// the insights service.
//
// # Logging
//
// Logger wraps stdlib slog with a JSON handler and field chaining:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("source", "activity_logs").Warn("source query failed")
//
// # Metrics
//
// Metrics registers counters and histograms for HTTP traffic, report source
// queries and fallbacks, rollup runs, and rate limiting:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	http.Handle("/metrics", observability.Handler(registry))
//
// # Health
//
// HealthChecker serves /healthz (liveness) and /readyz (readiness, pings the
// database and Redis) on the dedicated health port.
package observability
