package handler

import (
	"github.com/erp/pymes/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler serves productos and the public store catalog
type ProductHandler struct {
	BaseHandler
	service *catalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service *catalog.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

var productFilters = map[string]paramKind{
	"categoria":      stringParam,
	"activo":         boolParam,
	"visible_tienda": boolParam,
}

// List handles GET /productos
func (h *ProductHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c, productFilters)
	if !ok {
		return
	}
	products, total, err := h.service.List(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter)
}

// Catalog handles GET /catalogo, the active store-visible products
func (h *ProductHandler) Catalog(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{"categoria": stringParam})
	if !ok {
		return
	}
	products, total, err := h.service.Catalog(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter)
}

// Get handles GET /productos/:id
func (h *ProductHandler) Get(c *gin.Context) {
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

// Create handles POST /productos
func (h *ProductHandler) Create(c *gin.Context) {
	var input catalog.ProductInput
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

// Update handles PUT /productos/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input catalog.ProductInput
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

// Delete handles DELETE /productos/:id
func (h *ProductHandler) Delete(c *gin.Context) {
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

// RequestImageUpload handles POST /productos/:id/imagen
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input catalog.ImageUploadInput
	if !h.bindJSON(c, &input) {
		return
	}
	upload, err := h.service.RequestImageUpload(c.Request.Context(), tenantNIT(c), id, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, upload)
}

// ImageURL handles GET /productos/:id/imagen
func (h *ProductHandler) ImageURL(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	download, err := h.service.ImageURL(c.Request.Context(), tenantNIT(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, download)
}
