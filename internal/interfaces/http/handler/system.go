package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health and tenant maintenance endpoints
type SystemHandler struct {
	BaseHandler
	master    Pinger
	executor  apptenant.Executor
	startTime time.Time
	version   string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(master Pinger, executor apptenant.Executor, version string) *SystemHandler {
	return &SystemHandler{
		master:    master,
		executor:  executor,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health pings the master pool and answers 503 when it is down
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Database:  "up",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if err := h.master.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Error("Master database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}

// InitSchema handles POST /admin/schema/init for the caller's tenant
func (h *SystemHandler) InitSchema(c *gin.Context) {
	report, err := h.executor.InitSchema(c.Request.Context(), tenantNIT(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}
