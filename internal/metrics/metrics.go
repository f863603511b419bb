// Package metrics provides Prometheus metrics collection
package metrics

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Stefan/ppm-saas-sub001/internal/config"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Error metrics
	ErrorsTotal *prometheus.CounterVec

	// Business metrics
	ImportRowsTotal     *prometheus.CounterVec
	ImportDuration      *prometheus.HistogramVec
	VarianceAlertsTotal *prometheus.CounterVec
	RAGQueriesTotal     *prometheus.CounterVec
	RAGQueryDuration    *prometheus.HistogramVec
	RAGConfidence       prometheus.Histogram

	// Database metrics
	DatabaseQueriesTotal    *prometheus.CounterVec
	DatabaseQueryDuration   *prometheus.HistogramVec
	DatabaseConnectionsOpen prometheus.Gauge

	// Service health
	ServiceUptime prometheus.Gauge
	ServiceInfo   *prometheus.GaugeVec
}

// New creates a new Metrics instance with all collectors registered
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance with a custom registry
func NewWithRegistry(serviceName string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP metrics
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"service", "method", "path"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),

		// Error metrics
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors",
			},
			[]string{"service", "type", "operation"},
		),

		// Business metrics
		ImportRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "Total number of actual/commitment rows processed by the import engine",
			},
			[]string{"service", "import_type", "outcome"}, // outcome: success|duplicate|error
		),
		ImportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "import_batch_duration_seconds",
				Help:    "Import batch processing duration in seconds",
				Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"service", "import_type"},
		),
		VarianceAlertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "variance_alerts_total",
				Help: "Total number of variance threshold alerts created",
			},
			[]string{"service", "severity"},
		),
		RAGQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_queries_total",
				Help: "Total number of help-chat/RAG queries processed",
			},
			[]string{"service", "status"},
		),
		RAGQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rag_query_duration_seconds",
				Help:    "RAG query end-to-end duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20},
			},
			[]string{"service"},
		),
		RAGConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_query_confidence",
				Help:    "Confidence score distribution of RAG responses",
				Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
			},
		),

		// Database metrics
		DatabaseQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"service", "operation", "status"},
		),
		DatabaseQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "database_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"service", "operation"},
		),
		DatabaseConnectionsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "database_connections_open",
				Help: "Current number of open database connections",
			},
		),

		// Service health
		ServiceUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "service_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
		ServiceInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "service_info",
				Help: "Service information",
			},
			[]string{"service", "version", "environment"},
		),
	}

	// Register all collectors
	if registerer != nil {
		registerer.MustRegister(
			m.RequestsTotal,
			m.RequestDuration,
			m.RequestsInFlight,
			m.ErrorsTotal,
			m.ImportRowsTotal,
			m.ImportDuration,
			m.VarianceAlertsTotal,
			m.RAGQueriesTotal,
			m.RAGQueryDuration,
			m.RAGConfidence,
			m.DatabaseQueriesTotal,
			m.DatabaseQueryDuration,
			m.DatabaseConnectionsOpen,
			m.ServiceUptime,
			m.ServiceInfo,
		)
	}

	// Set service info
	m.ServiceInfo.WithLabelValues(serviceName, "1.0.0", getEnvironment()).Set(1)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(service, method, path, status).Inc()
	m.RequestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordError records an error
func (m *Metrics) RecordError(service, errorType, operation string) {
	m.ErrorsTotal.WithLabelValues(service, errorType, operation).Inc()
}

// RecordImportBatch records one import_actuals/import_commitments run.
func (m *Metrics) RecordImportBatch(service, importType string, duration time.Duration, success, duplicate, errorCount int) {
	m.ImportRowsTotal.WithLabelValues(service, importType, "success").Add(float64(success))
	m.ImportRowsTotal.WithLabelValues(service, importType, "duplicate").Add(float64(duplicate))
	m.ImportRowsTotal.WithLabelValues(service, importType, "error").Add(float64(errorCount))
	m.ImportDuration.WithLabelValues(service, importType).Observe(duration.Seconds())
}

// RecordVarianceAlert records one threshold-rule alert creation.
func (m *Metrics) RecordVarianceAlert(service, severity string) {
	m.VarianceAlertsTotal.WithLabelValues(service, severity).Inc()
}

// RecordRAGQuery records one help-chat/RAG query's outcome, latency, and
// confidence.
func (m *Metrics) RecordRAGQuery(service, status string, duration time.Duration, confidence float64) {
	m.RAGQueriesTotal.WithLabelValues(service, status).Inc()
	m.RAGQueryDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.RAGConfidence.Observe(confidence)
}

// RecordDatabaseQuery records a database query
func (m *Metrics) RecordDatabaseQuery(service, operation, status string, duration time.Duration) {
	m.DatabaseQueriesTotal.WithLabelValues(service, operation, status).Inc()
	m.DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// SetDatabaseConnections sets the number of open database connections
func (m *Metrics) SetDatabaseConnections(count int) {
	m.DatabaseConnectionsOpen.Set(float64(count))
}

// UpdateUptime updates the service uptime
func (m *Metrics) UpdateUptime(startTime time.Time) {
	m.ServiceUptime.Set(time.Since(startTime).Seconds())
}

// IncrementInFlight increments the in-flight requests counter
func (m *Metrics) IncrementInFlight() {
	m.RequestsInFlight.Inc()
}

// DecrementInFlight decrements the in-flight requests counter
func (m *Metrics) DecrementInFlight() {
	m.RequestsInFlight.Dec()
}

// Helper functions

func getEnvironment() string {
	return config.Environment()
}

// Enabled returns whether Prometheus metrics should be exposed.
//
// Defaults:
// - production: disabled unless explicitly enabled via METRICS_ENABLED
// - non-production: enabled unless explicitly disabled via METRICS_ENABLED
func Enabled() bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED")))
	if raw == "" {
		return !config.IsProduction()
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Global metrics instance
var (
	globalMetrics *Metrics
	globalMu      sync.Mutex
)

// Init initializes the global metrics instance
func Init(serviceName string) *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics == nil {
		globalMetrics = New(serviceName)
	}
	return globalMetrics
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics == nil {
		globalMetrics = New("unknown")
	}
	return globalMetrics
}
