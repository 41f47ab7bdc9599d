package handler

import (
	"github.com/erp/pymes/internal/application/trade"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler serves compras
type PurchaseHandler struct {
	BaseHandler
	service *trade.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(service *trade.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{
		"estado":      stringParam,
		"tercero_id":  intParam,
		"sucursal_id": intParam,
	})
	if !ok {
		return
	}
	purchases, total, err := h.service.List(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, purchases, total, filter)
}

func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), tenantNIT(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var input trade.PurchaseInput
	if !h.bindJSON(c, &input) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, p)
}

// Void handles POST /compras/:id/anular
func (h *PurchaseHandler) Void(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Void(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}
