package handler

import (
	"github.com/erp/pymes/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// PartnerHandler serves terceros
type PartnerHandler struct {
	BaseHandler
	service *partner.Service
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(service *partner.Service) *PartnerHandler {
	return &PartnerHandler{service: service}
}

func (h *PartnerHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{
		"tipo":   stringParam,
		"activo": boolParam,
		"ciudad": stringParam,
	})
	if !ok {
		return
	}
	partners, total, err := h.service.List(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, partners, total, filter)
}

func (h *PartnerHandler) Get(c *gin.Context) {
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

func (h *PartnerHandler) Create(c *gin.Context) {
	var input partner.PartnerInput
	if !h.bindJSON(c, &input) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), tenantNIT(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, p)
}

func (h *PartnerHandler) Update(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input partner.PartnerInput
	if !h.bindJSON(c, &input) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), tenantNIT(c), id, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete answers 400 when the tercero is still referenced by documents
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tenantNIT(c), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
