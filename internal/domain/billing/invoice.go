// Package billing holds sales invoices (facturas) and cash receipts
// (recibos_caja).
package billing

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice states
const (
	InvoiceIssued = "emitida"
	InvoicePaid   = "pagada"
	InvoiceVoided = "anulada"
)

// Payment methods
const (
	PaymentCash     = "efectivo"
	PaymentCard     = "tarjeta"
	PaymentTransfer = "transferencia"
	PaymentCredit   = "credito"
)

// Errors raised by invoice state changes
var (
	ErrInvoiceVoided = shared.NewDomainError("INVOICE_VOIDED", "Invoice is already voided")
	ErrEmptyInvoice  = shared.NewDomainError("EMPTY_INVOICE", "Invoice must contain at least one item")
)

// Invoice is a row of facturas
type Invoice struct {
	ID            int64           `gorm:"column:id;primaryKey" json:"id"`
	Number        string          `gorm:"column:numero" json:"numero"`
	DocumentID    int64           `gorm:"column:documento_id" json:"documento_id"`
	PartnerID     int64           `gorm:"column:tercero_id" json:"tercero_id"`
	BranchID      *int64          `gorm:"column:sucursal_id" json:"sucursal_id,omitempty"`
	UserID        int64           `gorm:"column:usuario_id" json:"usuario_id"`
	Date          time.Time       `gorm:"column:fecha" json:"fecha"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"column:iva" json:"iva"`
	Total         decimal.Decimal `gorm:"column:total" json:"total"`
	PaymentMethod string          `gorm:"column:metodo_pago" json:"metodo_pago"`
	Status        string          `gorm:"column:estado" json:"estado"`
	Notes         string          `gorm:"column:observaciones" json:"observaciones"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (Invoice) TableName() string {
	return "facturas"
}

// InvoiceItem is a row of factura_detalle
type InvoiceItem struct {
	ID        int64           `gorm:"column:id;primaryKey" json:"id"`
	InvoiceID int64           `gorm:"column:factura_id" json:"factura_id"`
	ProductID int64           `gorm:"column:producto_id" json:"producto_id"`
	Quantity  decimal.Decimal `gorm:"column:cantidad" json:"cantidad"`
	UnitPrice decimal.Decimal `gorm:"column:precio_unitario" json:"precio_unitario"`
	TaxRate   decimal.Decimal `gorm:"column:iva_porcentaje" json:"iva_porcentaje"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Tax       decimal.Decimal `gorm:"column:iva" json:"iva"`
	Total     decimal.Decimal `gorm:"column:total" json:"total"`
}

// TableName returns the tenant table name
func (InvoiceItem) TableName() string {
	return "factura_detalle"
}

// CalculateTotals fills line and header amounts from quantities and prices
func (inv *Invoice) CalculateTotals() error {
	if len(inv.Items) == 0 {
		return ErrEmptyInvoice
	}
	inv.Subtotal = decimal.Zero
	inv.Tax = decimal.Zero
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Subtotal, item.Tax = shared.LineAmounts(item.Quantity, item.UnitPrice, item.TaxRate)
		item.Total = item.Subtotal.Add(item.Tax)
		inv.Subtotal = inv.Subtotal.Add(item.Subtotal)
		inv.Tax = inv.Tax.Add(item.Tax)
	}
	inv.Total = inv.Subtotal.Add(inv.Tax)
	return nil
}

// Void marks the invoice anulada
func (inv *Invoice) Void() error {
	if inv.Status == InvoiceVoided {
		return ErrInvoiceVoided
	}
	inv.Status = InvoiceVoided
	return nil
}

// InvoiceRepository persists invoices and their lines
type InvoiceRepository interface {
	// FindByID loads the invoice with its items
	FindByID(ctx context.Context, id int64) (*Invoice, error)
	// FindForUpdate loads the invoice with its items and locks the header row
	FindForUpdate(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)
	// Create inserts the header and every item
	Create(ctx context.Context, invoice *Invoice) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}
