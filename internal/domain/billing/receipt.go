package billing

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for non-positive receipt amounts
var ErrInvalidAmount = shared.NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")

// Receipt is a row of recibos_caja
type Receipt struct {
	ID            int64           `gorm:"column:id;primaryKey" json:"id"`
	Number        string          `gorm:"column:numero" json:"numero"`
	PartnerID     *int64          `gorm:"column:tercero_id" json:"tercero_id,omitempty"`
	InvoiceID     *int64          `gorm:"column:factura_id" json:"factura_id,omitempty"`
	UserID        int64           `gorm:"column:usuario_id" json:"usuario_id"`
	Date          time.Time       `gorm:"column:fecha" json:"fecha"`
	Amount        decimal.Decimal `gorm:"column:valor" json:"valor"`
	PaymentMethod string          `gorm:"column:metodo_pago" json:"metodo_pago"`
	Concept       string          `gorm:"column:concepto" json:"concepto"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the tenant table name
func (Receipt) TableName() string {
	return "recibos_caja"
}

// Validate checks the amount
func (r *Receipt) Validate() error {
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ReceiptRepository persists cash receipts
type ReceiptRepository interface {
	shared.CRUDRepository[Receipt]
	// SumByInvoice totals the receipts recorded against invoiceID
	SumByInvoice(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
}
