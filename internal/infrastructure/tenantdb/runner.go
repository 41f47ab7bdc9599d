package tenantdb

import (
	"context"
	"errors"
	"time"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/infrastructure/persistence"
	"github.com/erp/pymes/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Span names of one tenant run
const (
	SpanRun          = "tenant.Run"
	SpanInitSchema   = "tenant.InitSchema"
	SpanResolve      = "tenant.resolve"
	SpanOpen         = "tenant.open"
	SpanPreflight    = "tenant.preflight"
	SpanSchemaRepair = "tenant.schema_repair"
)

var attrNIT = attribute.Key("tenant.nit")

// EntryResolver finds the directory entry of a tenant
type EntryResolver interface {
	Resolve(ctx context.Context, nit string) (*tenant.DirectoryEntry, error)
}

// Opener opens a dedicated tenant connection
type Opener interface {
	Open(ctx context.Context, entry *tenant.DirectoryEntry) (*Conn, error)
}

// SchemaManager creates and patches tenant schemas
type SchemaManager interface {
	// Ensure runs every idempotent DDL statement and column patch
	Ensure(ctx context.Context, db *gorm.DB) (*tenant.MigrationReport, error)
	// Preflight runs Ensure only when the schema ledger is behind. It
	// returns a nil report when nothing had to be done.
	Preflight(ctx context.Context, db *gorm.DB) (*tenant.MigrationReport, error)
}

// RunnerConfig holds the runner dependencies
type RunnerConfig struct {
	Resolver  EntryResolver
	Opener    Opener
	Schema    SchemaManager
	Preflight bool
	Metrics   *telemetry.Metrics
	Logger    *zap.Logger
	// Tracer defaults to a no-op tracer
	Tracer trace.Tracer
}

// Runner implements apptenant.Executor. Each Run opens a new connection
// and closes it before returning, whatever the outcome.
type Runner struct {
	resolver  EntryResolver
	opener    Opener
	schema    SchemaManager
	preflight bool
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewRunner creates a Runner
func NewRunner(cfg RunnerConfig) *Runner {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(telemetry.InstrumentationName)
	}
	return &Runner{
		resolver:  cfg.Resolver,
		opener:    cfg.Opener,
		schema:    cfg.Schema,
		preflight: cfg.Preflight,
		metrics:   cfg.Metrics,
		logger:    log,
		tracer:    tracer,
	}
}

// Run resolves nit, opens its database and calls fn with a session bound
// to that connection.
//
// Errors from fn are translated: a missing table or column triggers a
// schema repair and returns tenant.ErrSchemaRetry so the client resubmits;
// foreign key and unique violations become tenant.ErrConstraintViolation;
// domain errors pass through unchanged.
func (r *Runner) Run(ctx context.Context, nit string, fn func(ctx context.Context, s apptenant.Session) error) (err error) {
	ctx, span := r.tracer.Start(ctx, SpanRun, trace.WithAttributes(attrNIT.String(nit)))
	defer func() { endSpan(span, err) }()
	ctx, log := r.tenantLogger(ctx, nit)

	entry, conn, err := r.open(ctx, log, nit)
	if err != nil {
		return err
	}
	defer r.release(log, conn)

	if r.preflight {
		r.runPreflight(ctx, log, conn)
	}

	session := persistence.NewTenantSession(conn.DB.WithContext(ctx), apptenant.Info{
		NIT:  entry.NIT,
		Name: entry.DisplayName,
	})

	err = fn(ctx, session)
	if err == nil {
		return nil
	}
	return r.translate(ctx, log, conn, err)
}

// InitSchema runs the schema initializer for nit and returns the report
func (r *Runner) InitSchema(ctx context.Context, nit string) (report *tenant.MigrationReport, err error) {
	ctx, span := r.tracer.Start(ctx, SpanInitSchema, trace.WithAttributes(attrNIT.String(nit)))
	defer func() { endSpan(span, err) }()
	ctx, log := r.tenantLogger(ctx, nit)

	_, conn, err := r.open(ctx, log, nit)
	if err != nil {
		return nil, err
	}
	defer r.release(log, conn)

	report, err = r.schema.Ensure(ctx, conn.DB)
	r.metrics.ObserveSchemaRun(telemetry.TriggerExplicit, report, err)
	if report != nil {
		report.NIT = nit
	}
	if err != nil {
		log.Error("Tenant schema initialization failed", zap.Error(err))
		return report, err
	}
	r.logReport(log, "Tenant schema initialized", report)
	return report, nil
}

func (r *Runner) open(ctx context.Context, log *zap.Logger, nit string) (*tenant.DirectoryEntry, *Conn, error) {
	entry, err := r.resolve(ctx, nit)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			log.Info("Tenant not found in directory")
		} else {
			log.Error("Directory lookup failed", zap.Error(err))
		}
		return nil, nil, err
	}

	start := time.Now()
	conn, err := r.dial(ctx, entry)
	if err != nil {
		r.metrics.ObserveConnect(false)
		log.Error("Tenant connection failed",
			zap.String("host", entry.Host),
			zap.Int("port", entry.EffectivePort()),
			zap.String("database", entry.Database),
			zap.Error(errors.Unwrap(err)),
		)
		var derr *shared.DomainError
		if errors.As(err, &derr) {
			return nil, nil, err
		}
		return nil, nil, tenant.ErrConnectFailure.Wrap(err)
	}
	r.metrics.ObserveConnect(true)
	log.Debug("Tenant connection opened",
		zap.String("host", entry.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	return entry, conn, nil
}

func (r *Runner) resolve(ctx context.Context, nit string) (entry *tenant.DirectoryEntry, err error) {
	ctx, span := r.tracer.Start(ctx, SpanResolve)
	defer func() { endSpan(span, err) }()
	return r.resolver.Resolve(ctx, nit)
}

func (r *Runner) dial(ctx context.Context, entry *tenant.DirectoryEntry) (conn *Conn, err error) {
	ctx, span := r.tracer.Start(ctx, SpanOpen, trace.WithAttributes(
		attribute.String("db.name", entry.Database),
		attribute.Int("server.port", entry.EffectivePort()),
	))
	defer func() { endSpan(span, err) }()
	return r.opener.Open(ctx, entry)
}

// runPreflight never fails the run; errors are logged and recorded
func (r *Runner) runPreflight(ctx context.Context, log *zap.Logger, conn *Conn) {
	ctx, span := r.tracer.Start(ctx, SpanPreflight)
	report, err := r.schema.Preflight(ctx, conn.DB)
	span.SetAttributes(attribute.Bool("schema.upgraded", report != nil))
	endSpan(span, err)

	r.metrics.ObserveSchemaRun(telemetry.TriggerPreflight, report, err)
	switch {
	case err != nil:
		log.Warn("Schema preflight failed", zap.Error(err))
	case report != nil:
		r.logReport(log, "Schema upgraded by preflight", report)
	}
}

func (r *Runner) repair(ctx context.Context, log *zap.Logger, conn *Conn) {
	ctx, span := r.tracer.Start(ctx, SpanSchemaRepair)
	report, err := r.schema.Ensure(ctx, conn.DB)
	if report != nil {
		span.SetAttributes(attribute.Int("schema.columns_applied", len(report.Applied())))
	}
	endSpan(span, err)

	r.metrics.ObserveSchemaRun(telemetry.TriggerLazy, report, err)
	if err != nil {
		log.Error("Tenant schema repair failed", zap.Error(err))
		return
	}
	r.logReport(log, "Tenant schema repaired", report)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Runner) release(log *zap.Logger, conn *Conn) {
	if err := conn.Close(); err != nil {
		log.Warn("Failed to close tenant connection", zap.Error(err))
	}
}

func (r *Runner) translate(ctx context.Context, log *zap.Logger, conn *Conn, err error) error {
	var derr *shared.DomainError
	if errors.As(err, &derr) {
		return err
	}

	if IsSchemaDrift(err) {
		log.Warn("Schema drift detected, repairing tenant schema", zap.Error(err))
		r.repair(ctx, log, conn)
		return tenant.ErrSchemaRetry.Wrap(err)
	}

	if cv := ConstraintError(err); cv != nil {
		log.Info("Constraint violation", zap.Error(err))
		return cv
	}
	return err
}

func (r *Runner) logReport(log *zap.Logger, msg string, report *tenant.MigrationReport) {
	fields := []zap.Field{
		zap.Int("from_version", report.FromVersion),
		zap.Int("version", report.Version),
		zap.Int("columns_applied", len(report.Applied())),
		zap.Duration("elapsed", report.Duration),
	}
	if perr := report.Err(); perr != nil {
		log.Warn(msg+" with failed column patches", append(fields, zap.Error(perr))...)
		return
	}
	log.Info(msg, fields...)
}

func (r *Runner) tenantLogger(ctx context.Context, nit string) (context.Context, *zap.Logger) {
	ctx = logger.WithContext(ctx, logger.FromContextOr(ctx, r.logger))
	return logger.WithTenant(ctx, nit)
}

var _ apptenant.Executor = (*Runner)(nil)
