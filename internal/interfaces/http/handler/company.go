package handler

import (
	"github.com/erp/pymes/internal/application/company"
	"github.com/gin-gonic/gin"
)

// CompanyHandler serves sucursales and documentos
type CompanyHandler struct {
	BaseHandler
	service *company.Service
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(service *company.Service) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// ListBranches handles GET /sucursales
func (h *CompanyHandler) ListBranches(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{"activa": boolParam, "ciudad": stringParam})
	if !ok {
		return
	}
	branches, total, err := h.service.ListBranches(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, branches, total, filter)
}

// GetBranch handles GET /sucursales/:id
func (h *CompanyHandler) GetBranch(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	branch, err := h.service.GetBranch(c.Request.Context(), tenantNIT(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, branch)
}

// CreateBranch handles POST /sucursales
func (h *CompanyHandler) CreateBranch(c *gin.Context) {
	var input company.BranchInput
	if !h.bindJSON(c, &input) {
		return
	}
	branch, err := h.service.CreateBranch(c.Request.Context(), tenantNIT(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, branch)
}

// UpdateBranch handles PUT /sucursales/:id
func (h *CompanyHandler) UpdateBranch(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input company.BranchInput
	if !h.bindJSON(c, &input) {
		return
	}
	branch, err := h.service.UpdateBranch(c.Request.Context(), tenantNIT(c), id, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, branch)
}

// DeleteBranch handles DELETE /sucursales/:id
func (h *CompanyHandler) DeleteBranch(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteBranch(c.Request.Context(), tenantNIT(c), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// ListDocuments handles GET /documentos
func (h *CompanyHandler) ListDocuments(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{
		"tipo":        stringParam,
		"sucursal_id": intParam,
		"activo":      boolParam,
	})
	if !ok {
		return
	}
	docs, total, err := h.service.ListDocuments(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, filter)
}

// GetDocument handles GET /documentos/:id
func (h *CompanyHandler) GetDocument(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetDocument(c.Request.Context(), tenantNIT(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, doc)
}

// CreateDocument handles POST /documentos
func (h *CompanyHandler) CreateDocument(c *gin.Context) {
	var input company.DocumentInput
	if !h.bindJSON(c, &input) {
		return
	}
	doc, err := h.service.CreateDocument(c.Request.Context(), tenantNIT(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, doc)
}

// UpdateDocument handles PUT /documentos/:id
func (h *CompanyHandler) UpdateDocument(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input company.DocumentInput
	if !h.bindJSON(c, &input) {
		return
	}
	doc, err := h.service.UpdateDocument(c.Request.Context(), tenantNIT(c), id, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, doc)
}

// DeleteDocument handles DELETE /documentos/:id
func (h *CompanyHandler) DeleteDocument(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteDocument(c.Request.Context(), tenantNIT(c), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
