package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceInput is the body of POST /facturas
type InvoiceInput struct {
	DocumentID    int64              `json:"documento_id" binding:"required,gt=0"`
	PartnerID     int64              `json:"tercero_id" binding:"required,gt=0"`
	BranchID      *int64             `json:"sucursal_id" binding:"omitempty,gt=0"`
	Date          *time.Time         `json:"fecha"`
	PaymentMethod string             `json:"metodo_pago" binding:"omitempty,oneof=efectivo tarjeta transferencia credito"`
	Notes         string             `json:"observaciones" binding:"max=1000"`
	Items         []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
}

// InvoiceItemInput is one invoice line. Price and IVA default to the
// product's precio_venta and iva when omitted.
type InvoiceItemInput struct {
	ProductID int64            `json:"producto_id" binding:"required,gt=0"`
	Quantity  decimal.Decimal  `json:"cantidad"`
	UnitPrice *decimal.Decimal `json:"precio_unitario"`
	TaxRate   *decimal.Decimal `json:"iva_porcentaje"`
}

// ReceiptInput is the body of POST /recibos_caja. At least one of
// tercero_id or factura_id is required.
type ReceiptInput struct {
	DocumentID    *int64          `json:"documento_id" binding:"omitempty,gt=0"`
	PartnerID     *int64          `json:"tercero_id" binding:"omitempty,gt=0"`
	InvoiceID     *int64          `json:"factura_id" binding:"omitempty,gt=0"`
	Date          *time.Time      `json:"fecha"`
	Amount        decimal.Decimal `json:"valor"`
	PaymentMethod string          `json:"metodo_pago" binding:"omitempty,oneof=efectivo tarjeta transferencia"`
	Concept       string          `json:"concepto" binding:"max=255"`
}
