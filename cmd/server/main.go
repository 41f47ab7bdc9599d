package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/erp/pymes/internal/application/billing"
	catalogapp "github.com/erp/pymes/internal/application/catalog"
	companyapp "github.com/erp/pymes/internal/application/company"
	identityapp "github.com/erp/pymes/internal/application/identity"
	inventoryapp "github.com/erp/pymes/internal/application/inventory"
	partnerapp "github.com/erp/pymes/internal/application/partner"
	apptenant "github.com/erp/pymes/internal/application/tenant"
	tradeapp "github.com/erp/pymes/internal/application/trade"
	"github.com/erp/pymes/internal/infrastructure/auth"
	"github.com/erp/pymes/internal/infrastructure/config"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/infrastructure/persistence"
	"github.com/erp/pymes/internal/infrastructure/storage"
	"github.com/erp/pymes/internal/infrastructure/telemetry"
	"github.com/erp/pymes/internal/infrastructure/tenantdb"
	"github.com/erp/pymes/internal/infrastructure/tenantschema"
	"github.com/erp/pymes/internal/interfaces/http/handler"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/erp/pymes/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting pymes API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	master, err := persistence.NewMasterDatabase(&cfg.Master, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to master database", zap.Error(err))
	}
	defer func() {
		if err := master.Close(); err != nil {
			log.Error("Error closing master database", zap.Error(err))
		}
	}()
	log.Info("Master database connected", zap.String("database", cfg.Master.DBName))

	tracing, err := telemetry.NewTracerProvider(context.Background(), telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}
	if sqlDB, err := master.DB.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, "master"); err != nil {
			log.Warn("Failed to register master pool metrics", zap.Error(err))
		}
	}

	var sealer *tenantdb.Sealer
	if key := cfg.Tenancy.DirectoryKeyBytes(); key != nil {
		sealer, err = tenantdb.NewSealer(key)
		if err != nil {
			log.Fatal("Invalid tenancy directory key", zap.Error(err))
		}
	}

	executor := newExecutor(cfg, master, sealer, metrics, tracing, gormLog, log)

	blacklist, closeBlacklist := newBlacklist(cfg, log)
	defer closeBlacklist()

	jwtService := auth.NewJWTService(cfg.JWT)

	var images catalogapp.ImageStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(context.Background(), &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Object storage bucket check failed", zap.Error(err))
		}
		cancel()
		images = s3
		log.Info("Product image storage enabled", zap.String("bucket", s3.Bucket()))
	}

	authService := identityapp.NewAuthService(executor, jwtService, blacklist, log)
	invoiceService := billingapp.NewInvoiceService(executor, log)
	receiptService := billingapp.NewReceiptService(executor, log)

	engine, err := router.New(router.Config{
		HTTP:    cfg.HTTP,
		JWT:     middleware.JWTConfig{JWTService: jwtService, Blacklist: blacklist, Logger: log},
		Tracing: middleware.TracingConfig{
			Enabled:     tracing.Enabled(),
			ServiceName: cfg.Telemetry.ServiceName,
			Provider:    tracing.Provider(),
		},
		Metrics: metrics,
		Logger:  log,
	}, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, middleware.NewKeyedLimiter(cfg.HTTP.LoginRatePerMinute, time.Minute)),
		Company:   handler.NewCompanyHandler(companyapp.NewService(executor)),
		Partner:   handler.NewPartnerHandler(partnerapp.NewService(executor)),
		Product:   handler.NewProductHandler(catalogapp.NewProductService(executor, images, log)),
		Billing:   handler.NewBillingHandler(invoiceService, receiptService),
		Purchase:  handler.NewPurchaseHandler(tradeapp.NewPurchaseService(executor, log)),
		Inventory: handler.NewInventoryHandler(inventoryapp.NewService(executor, log)),
		System:    handler.NewSystemHandler(master, executor, version),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// newExecutor wires the per-request tenant connection runner
func newExecutor(
	cfg *config.Config,
	master *persistence.MasterDatabase,
	sealer *tenantdb.Sealer,
	metrics *telemetry.Metrics,
	tracing *telemetry.TracerProvider,
	gormLog *logger.GormLogger,
	log *zap.Logger,
) apptenant.Executor {
	resolver := apptenant.NewResolver(
		persistence.NewGormDirectoryRepository(master.DB),
		cfg.Tenancy.PublicHost,
		log,
	)
	opts := []tenantdb.FactoryOption{tenantdb.WithGormLogger(gormLog)}
	if cfg.Telemetry.DBTraceEnabled {
		opts = append(opts, tenantdb.WithPlugin(tracing.DBTracingPlugin(cfg.Telemetry.DBLogFullSQL)))
	}
	factory := tenantdb.NewFactory(tenantdb.FactoryConfig{
		ConnectTimeout: cfg.Tenancy.ConnectTimeout,
		ReadTimeout:    cfg.Tenancy.ReadTimeout,
		WriteTimeout:   cfg.Tenancy.WriteTimeout,
	}, sealer, opts...)

	return tenantdb.NewRunner(tenantdb.RunnerConfig{
		Resolver:  resolver,
		Opener:    factory,
		Schema:    tenantschema.NewInitializer(log),
		Preflight: cfg.Tenancy.Preflight,
		Metrics:   metrics,
		Logger:    log,
		Tracer:    tracing.Tracer(),
	})
}

// newBlacklist connects the Redis token blacklist, falling back to the
// in-memory one when Redis is disabled or unreachable.
func newBlacklist(cfg *config.Config, log *zap.Logger) (auth.TokenBlacklist, func()) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory token blacklist")
		return auth.NewInMemoryTokenBlacklist(), func() {}
	}

	redisBlacklist, err := auth.NewRedisTokenBlacklist(context.Background(), auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		return auth.NewInMemoryTokenBlacklist(), func() {}
	}
	return redisBlacklist, func() {
		if err := redisBlacklist.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}
}
