// Package router assembles the gin engine of the pymes API.
package router

import (
	"net/http"

	"github.com/erp/pymes/internal/domain/identity"
	"github.com/erp/pymes/internal/infrastructure/config"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/infrastructure/telemetry"
	"github.com/erp/pymes/internal/interfaces/http/handler"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIPrefix is the versioned prefix of every resource route
const APIPrefix = "/api/v1"

// Handlers groups the endpoint handlers mounted by New
type Handlers struct {
	Auth      *handler.AuthHandler
	Company   *handler.CompanyHandler
	Partner   *handler.PartnerHandler
	Product   *handler.ProductHandler
	Billing   *handler.BillingHandler
	Purchase  *handler.PurchaseHandler
	Inventory *handler.InventoryHandler
	System    *handler.SystemHandler
}

// Config holds what New needs besides the handlers
type Config struct {
	HTTP    config.HTTPConfig
	JWT     middleware.JWTConfig
	Tracing middleware.TracingConfig
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
}

// New builds the engine with the global middleware chain, the public
// routes and the JWT protected tenant routes.
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanTagger(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORS(cors),
		middleware.Metrics(cfg.Metrics),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := engine.Group(APIPrefix)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	if cfg.JWT.Logger == nil {
		cfg.JWT.Logger = log
	}
	protected := api.Group("", middleware.JWTAuth(cfg.JWT))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewKeyedLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		protected.Use(middleware.RateLimit(limiter, middleware.KeyByTenantOrIP))
	}

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)

	resource(protected, "/sucursales", crud{
		list: h.Company.ListBranches, get: h.Company.GetBranch, create: h.Company.CreateBranch,
		update: h.Company.UpdateBranch, remove: h.Company.DeleteBranch,
	})
	resource(protected, "/documentos", crud{
		list: h.Company.ListDocuments, get: h.Company.GetDocument, create: h.Company.CreateDocument,
		update: h.Company.UpdateDocument, remove: h.Company.DeleteDocument,
	})
	resource(protected, "/terceros", crud{
		list: h.Partner.List, get: h.Partner.Get, create: h.Partner.Create,
		update: h.Partner.Update, remove: h.Partner.Delete,
	})

	products := resource(protected, "/productos", crud{
		list: h.Product.List, get: h.Product.Get, create: h.Product.Create,
		update: h.Product.Update, remove: h.Product.Delete,
	})
	products.POST("/:id/imagen", h.Product.RequestImageUpload)
	products.GET("/:id/imagen", h.Product.ImageURL)
	protected.GET("/catalogo", h.Product.Catalog)

	invoices := resource(protected, "/facturas", crud{
		list: h.Billing.ListInvoices, get: h.Billing.GetInvoice, create: h.Billing.CreateInvoice,
	})
	invoices.POST("/:id/anular", h.Billing.VoidInvoice)

	resource(protected, "/recibos_caja", crud{
		list: h.Billing.ListReceipts, create: h.Billing.CreateReceipt,
	})

	purchases := resource(protected, "/compras", crud{
		list: h.Purchase.List, get: h.Purchase.Get, create: h.Purchase.Create,
	})
	purchases.POST("/:id/anular", h.Purchase.Void)

	inv := protected.Group("/inventario")
	inv.GET("", h.Inventory.BranchStock)
	inv.GET("/movimientos", h.Inventory.Movements)
	inv.POST("/ajustes", h.Inventory.Adjust)

	admin := protected.Group("/admin", middleware.RequireRole(identity.RoleAdmin))
	admin.POST("/schema/init", h.System.InitSchema)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "Route not found",
				"request_id": c.GetString(middleware.RequestIDKey),
			},
		})
	})

	return engine, nil
}

// crud names the handlers of a resource; nil entries are not mounted
type crud struct {
	list, get, create, update, remove gin.HandlerFunc
}

func resource(rg *gin.RouterGroup, prefix string, r crud) *gin.RouterGroup {
	g := rg.Group(prefix)
	if r.list != nil {
		g.GET("", r.list)
	}
	if r.create != nil {
		g.POST("", r.create)
	}
	if r.get != nil {
		g.GET("/:id", r.get)
	}
	if r.update != nil {
		g.PUT("/:id", r.update)
	}
	if r.remove != nil {
		g.DELETE("/:id", r.remove)
	}
	return g
}
