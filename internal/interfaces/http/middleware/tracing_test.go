package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/pymes/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return tp, rec
}

func TestTracing_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tp, rec := newRecordingProvider(t)

	r := gin.New()
	r.Use(Tracing(TracingConfig{Enabled: false, Provider: tp}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.Ended())
}

func TestTracing_TagsTenantAndRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tp, rec := newRecordingProvider(t)

	r := gin.New()
	r.Use(RequestID(), Tracing(TracingConfig{Enabled: true, ServiceName: "pymes-test", Provider: tp}), SpanTagger())
	r.GET("/api/v1/productos/:id", func(c *gin.Context) {
		c.Set(JWTClaimsKey, &auth.Claims{TenantID: "800100200", UserID: 9})
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/productos/5", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/v1/productos/:id")

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "req-123", attrs["request_id"].AsString())
	assert.Equal(t, "800100200", attrs["tenant.nit"].AsString())
	assert.Equal(t, int64(9), attrs["user_id"].AsInt64())
}
