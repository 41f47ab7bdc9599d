// Package inventory holds per-branch stock and the movement log.
package inventory

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Movement kinds
const (
	MovementIn         = "entrada"
	MovementOut        = "salida"
	MovementAdjustment = "ajuste"
)

// Movement sources
const (
	SourceInvoice  = "factura"
	SourcePurchase = "compra"
	SourceManual   = "manual"
)

// ErrZeroQuantity is returned for adjustments that would not move stock
var ErrZeroQuantity = shared.NewDomainError("ZERO_QUANTITY", "Quantity must not be zero")

// BranchStock is a row of inventario_sucursales
type BranchStock struct {
	ID        int64           `gorm:"column:id;primaryKey" json:"id"`
	BranchID  int64           `gorm:"column:sucursal_id" json:"sucursal_id"`
	ProductID int64           `gorm:"column:producto_id" json:"producto_id"`
	Quantity  decimal.Decimal `gorm:"column:cantidad" json:"cantidad"`
	UpdatedAt time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (BranchStock) TableName() string {
	return "inventario_sucursales"
}

// Movement is a row of movimientos_inventario
type Movement struct {
	ID          int64           `gorm:"column:id;primaryKey" json:"id"`
	ProductID   int64           `gorm:"column:producto_id" json:"producto_id"`
	BranchID    *int64          `gorm:"column:sucursal_id" json:"sucursal_id,omitempty"`
	Kind        string          `gorm:"column:tipo" json:"tipo"`
	Quantity    decimal.Decimal `gorm:"column:cantidad" json:"cantidad"`
	Source      string          `gorm:"column:origen" json:"origen"`
	ReferenceID *int64          `gorm:"column:referencia_id" json:"referencia_id,omitempty"`
	UserID      int64           `gorm:"column:usuario_id" json:"usuario_id"`
	Notes       string          `gorm:"column:observaciones" json:"observaciones"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the tenant table name
func (Movement) TableName() string {
	return "movimientos_inventario"
}

// Delta returns the signed change this movement applies to stock
func (m *Movement) Delta() decimal.Decimal {
	if m.Kind == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// InventoryRepository persists branch stock and movements
type InventoryRepository interface {
	// AddBranchStock upserts the (sucursal, producto) row adding delta
	AddBranchStock(ctx context.Context, branchID, productID int64, delta decimal.Decimal) error
	ListBranchStock(ctx context.Context, branchID int64) ([]BranchStock, error)
	RecordMovement(ctx context.Context, movement *Movement) error
	ListMovements(ctx context.Context, productID int64, filter shared.Filter) ([]Movement, int64, error)
}
