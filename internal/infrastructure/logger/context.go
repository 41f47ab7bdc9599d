package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	tenantKey    contextKey = "tenant_nit"
	userIDKey    contextKey = "user_id"
)

// WithContext returns a new context carrying log
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext retrieves the logger from context, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.NewNop()
}

// FromContextOr retrieves the logger from context, or fallback when ctx
// carries none.
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok && log != nil {
		return log
	}
	return fallback
}

// WithRequestID stores the request id and returns the enriched logger
func WithRequestID(ctx context.Context, requestID string) (context.Context, *zap.Logger) {
	return enrich(context.WithValue(ctx, requestIDKey, requestID), zap.String("request_id", requestID))
}

// WithTenant stores the tenant NIT and returns the enriched logger
func WithTenant(ctx context.Context, nit string) (context.Context, *zap.Logger) {
	return enrich(context.WithValue(ctx, tenantKey, nit), zap.String("tenant", nit))
}

// WithUserID stores the authenticated user id and returns the enriched logger
func WithUserID(ctx context.Context, userID string) (context.Context, *zap.Logger) {
	return enrich(context.WithValue(ctx, userIDKey, userID), zap.String("user_id", userID))
}

func enrich(ctx context.Context, field zap.Field) (context.Context, *zap.Logger) {
	log := FromContext(ctx).With(field)
	return WithContext(ctx, log), log
}

// RequestID returns the request id stored in ctx
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// Tenant returns the tenant NIT stored in ctx
func Tenant(ctx context.Context) string {
	v, _ := ctx.Value(tenantKey).(string)
	return v
}

// UserID returns the user id stored in ctx
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// WithTraceContext adds trace_id and span_id of the span in ctx to log.
// log is returned unchanged when ctx carries no valid span.
func WithTraceContext(ctx context.Context, log *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
