package handler

import (
	"strconv"

	"github.com/erp/pymes/internal/application/inventory"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// InventoryHandler serves stock queries and manual adjustments
type InventoryHandler struct {
	BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// BranchStock handles GET /inventario?sucursal_id=
func (h *InventoryHandler) BranchStock(c *gin.Context) {
	branchID, ok := h.requiredID(c, "sucursal_id")
	if !ok {
		return
	}
	stock, err := h.service.BranchStock(c.Request.Context(), tenantNIT(c), branchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stock)
}

// Movements handles GET /inventario/movimientos. Without producto_id every
// product's movements are listed.
func (h *InventoryHandler) Movements(c *gin.Context) {
	var productID int64
	if raw := c.Query("producto_id"); raw != "" {
		id, ok := h.requiredID(c, "producto_id")
		if !ok {
			return
		}
		productID = id
	}
	filter, ok := h.listFilter(c, map[string]paramKind{"tipo": stringParam})
	if !ok {
		return
	}
	movements, total, err := h.service.Movements(c.Request.Context(), tenantNIT(c), productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter)
}

// Adjust handles POST /inventario/ajustes
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var input inventory.AdjustmentInput
	if !h.bindJSON(c, &input) {
		return
	}
	result, err := h.service.Adjust(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *InventoryHandler) requiredID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, name+" is required")
		return 0, false
	}
	return id, true
}
