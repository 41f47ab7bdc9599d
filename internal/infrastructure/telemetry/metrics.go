// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing
// for tenant routing, schema maintenance and HTTP traffic.
package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pymes"

// Schema run triggers
const (
	TriggerPreflight = "preflight"
	TriggerLazy      = "lazy"
	TriggerExplicit  = "explicit"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	tenantConnections *prometheus.CounterVec
	schemaRuns        *prometheus.CounterVec
	columnPatches     *prometheus.CounterVec
	schemaDuration    *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a dedicated registry that also
// carries the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tenantConnections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_connections_total",
			Help:      "Tenant database connections by result",
		}, []string{"result"}),
		schemaRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_schema_runs_total",
			Help:      "Tenant schema initializer runs by trigger and result",
		}, []string{"trigger", "result"}),
		columnPatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_column_patches_total",
			Help:      "Column patch outcomes by table",
		}, []string{"table", "outcome"}),
		schemaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tenant_schema_duration_seconds",
			Help:      "Duration of tenant schema runs",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"trigger"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tenantConnections,
		m.schemaRuns,
		m.columnPatches,
		m.schemaDuration,
		m.httpRequests,
		m.httpDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RegisterDBStats exports sql.DB pool statistics under db_name
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveConnect counts a tenant connection attempt
func (m *Metrics) ObserveConnect(ok bool) {
	if m == nil {
		return
	}
	result := "opened"
	if !ok {
		result = "failed"
	}
	m.tenantConnections.WithLabelValues(result).Inc()
}

// ObserveSchemaRun records a schema initializer run. report may be nil
// when the run was skipped or failed before producing one.
func (m *Metrics) ObserveSchemaRun(trigger string, report *tenant.MigrationReport, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.schemaRuns.WithLabelValues(trigger, "failed").Inc()
	case report == nil:
		m.schemaRuns.WithLabelValues(trigger, "skipped").Inc()
	case len(report.Failed()) > 0:
		m.schemaRuns.WithLabelValues(trigger, "partial").Inc()
	default:
		m.schemaRuns.WithLabelValues(trigger, "applied").Inc()
	}
	if report == nil {
		return
	}
	m.schemaDuration.WithLabelValues(trigger).Observe(report.Duration.Seconds())
	for _, c := range report.Columns {
		m.columnPatches.WithLabelValues(c.Table, string(c.Outcome)).Inc()
	}
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
