package handler

import (
	"github.com/erp/pymes/internal/application/billing"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BillingHandler serves facturas and recibos_caja
type BillingHandler struct {
	BaseHandler
	invoices *billing.InvoiceService
	receipts *billing.ReceiptService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(invoices *billing.InvoiceService, receipts *billing.ReceiptService) *BillingHandler {
	return &BillingHandler{invoices: invoices, receipts: receipts}
}

// ListInvoices handles GET /facturas
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{
		"estado":      stringParam,
		"tercero_id":  intParam,
		"sucursal_id": intParam,
		"metodo_pago": stringParam,
	})
	if !ok {
		return
	}
	invoices, total, err := h.invoices.List(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter)
}

// GetInvoice handles GET /facturas/:id, detail lines included
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Get(c.Request.Context(), tenantNIT(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, inv)
}

// CreateInvoice handles POST /facturas
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	var input billing.InvoiceInput
	if !h.bindJSON(c, &input) {
		return
	}
	inv, err := h.invoices.Create(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, inv)
}

// VoidInvoice handles POST /facturas/:id/anular
func (h *BillingHandler) VoidInvoice(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Void(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, inv)
}

// ListReceipts handles GET /recibos_caja
func (h *BillingHandler) ListReceipts(c *gin.Context) {
	filter, ok := h.listFilter(c, map[string]paramKind{
		"tercero_id":  intParam,
		"factura_id":  intParam,
		"metodo_pago": stringParam,
	})
	if !ok {
		return
	}
	receipts, total, err := h.receipts.List(c.Request.Context(), tenantNIT(c), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, receipts, total, filter)
}

// CreateReceipt handles POST /recibos_caja
func (h *BillingHandler) CreateReceipt(c *gin.Context) {
	var input billing.ReceiptInput
	if !h.bindJSON(c, &input) {
		return
	}
	r, err := h.receipts.Create(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, r)
}
