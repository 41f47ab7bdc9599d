// Package trade holds supplier purchases (compras).
package trade

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Purchase states
const (
	PurchaseReceived = "recibida"
	PurchaseVoided   = "anulada"
)

// Errors raised by purchase rules
var (
	ErrPurchaseVoided = shared.NewDomainError("PURCHASE_VOIDED", "Purchase is already voided")
	ErrEmptyPurchase  = shared.NewDomainError("EMPTY_PURCHASE", "Purchase must contain at least one item")
)

// Purchase is a row of compras
type Purchase struct {
	ID         int64           `gorm:"column:id;primaryKey" json:"id"`
	Number     string          `gorm:"column:numero" json:"numero"`
	DocumentID *int64          `gorm:"column:documento_id" json:"documento_id,omitempty"`
	PartnerID  int64           `gorm:"column:tercero_id" json:"tercero_id"`
	BranchID   *int64          `gorm:"column:sucursal_id" json:"sucursal_id,omitempty"`
	UserID     int64           `gorm:"column:usuario_id" json:"usuario_id"`
	Date       time.Time       `gorm:"column:fecha" json:"fecha"`
	Subtotal   decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"column:iva" json:"iva"`
	Total      decimal.Decimal `gorm:"column:total" json:"total"`
	Status     string          `gorm:"column:estado" json:"estado"`
	Notes      string          `gorm:"column:observaciones" json:"observaciones"`
	Items      []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (Purchase) TableName() string {
	return "compras"
}

// PurchaseItem is a row of compras_detalle
type PurchaseItem struct {
	ID         int64           `gorm:"column:id;primaryKey" json:"id"`
	PurchaseID int64           `gorm:"column:compra_id" json:"compra_id"`
	ProductID  int64           `gorm:"column:producto_id" json:"producto_id"`
	Quantity   decimal.Decimal `gorm:"column:cantidad" json:"cantidad"`
	UnitCost   decimal.Decimal `gorm:"column:costo_unitario" json:"costo_unitario"`
	TaxRate    decimal.Decimal `gorm:"column:iva_porcentaje" json:"iva_porcentaje"`
	Subtotal   decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"column:iva" json:"iva"`
	Total      decimal.Decimal `gorm:"column:total" json:"total"`
}

// TableName returns the tenant table name
func (PurchaseItem) TableName() string {
	return "compras_detalle"
}

// CalculateTotals fills line and header amounts
func (p *Purchase) CalculateTotals() error {
	if len(p.Items) == 0 {
		return ErrEmptyPurchase
	}
	p.Subtotal, p.Tax = decimal.Zero, decimal.Zero
	for i := range p.Items {
		item := &p.Items[i]
		item.Subtotal, item.Tax = shared.LineAmounts(item.Quantity, item.UnitCost, item.TaxRate)
		item.Total = item.Subtotal.Add(item.Tax)
		p.Subtotal = p.Subtotal.Add(item.Subtotal)
		p.Tax = p.Tax.Add(item.Tax)
	}
	p.Total = p.Subtotal.Add(p.Tax)
	return nil
}

// Void marks the purchase anulada
func (p *Purchase) Void() error {
	if p.Status == PurchaseVoided {
		return ErrPurchaseVoided
	}
	p.Status = PurchaseVoided
	return nil
}

// PurchaseRepository persists purchases and their lines
type PurchaseRepository interface {
	FindByID(ctx context.Context, id int64) (*Purchase, error)
	// FindForUpdate loads the purchase with its items and locks the header row
	FindForUpdate(ctx context.Context, id int64) (*Purchase, error)
	List(ctx context.Context, filter shared.Filter) ([]Purchase, int64, error)
	Create(ctx context.Context, purchase *Purchase) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}
