package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveConnect(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.ObserveConnect(true)
	m.ObserveConnect(true)
	m.ObserveConnect(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tenantConnections.WithLabelValues("opened")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tenantConnections.WithLabelValues("failed")))
}

func TestMetrics_ObserveSchemaRun(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.ObserveSchemaRun(TriggerLazy, &tenant.MigrationReport{
		Duration: 120 * time.Millisecond,
		Columns: []tenant.ColumnResult{
			{Table: "productos", Column: "iva", Outcome: tenant.ColumnApplied},
			{Table: "productos", Column: "categoria", Outcome: tenant.ColumnFailed},
		},
	}, nil)
	m.ObserveSchemaRun(TriggerPreflight, nil, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.schemaRuns.WithLabelValues(TriggerLazy, "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.schemaRuns.WithLabelValues(TriggerPreflight, "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.columnPatches.WithLabelValues("productos", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.columnPatches.WithLabelValues("productos", "failed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveConnect(true)
		m.ObserveSchemaRun(TriggerExplicit, nil, nil)
		m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
		_ = m.RegisterDBStats(nil, "master")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.ObserveHTTP(http.MethodGet, "/api/v1/productos", 200, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pymes_http_requests_total{method="GET",path="/api/v1/productos",status="200"} 1`)
}
