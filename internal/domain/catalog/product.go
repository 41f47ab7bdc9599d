// Package catalog holds the product model shared by billing, purchasing,
// inventory and the public store catalog.
package catalog

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a row of productos
type Product struct {
	ID            int64           `gorm:"column:id;primaryKey" json:"id"`
	Code          string          `gorm:"column:codigo" json:"codigo"`
	Barcode       string          `gorm:"column:codigo_barras" json:"codigo_barras"`
	Name          string          `gorm:"column:nombre" json:"nombre"`
	Description   string          `gorm:"column:descripcion" json:"descripcion"`
	Category      string          `gorm:"column:categoria" json:"categoria"`
	Unit          string          `gorm:"column:unidad" json:"unidad"`
	PurchasePrice decimal.Decimal `gorm:"column:precio_compra" json:"precio_compra"`
	SalePrice     decimal.Decimal `gorm:"column:precio_venta" json:"precio_venta"`
	TaxRate       decimal.Decimal `gorm:"column:iva" json:"iva"`
	Stock         decimal.Decimal `gorm:"column:stock" json:"stock"`
	MinStock      decimal.Decimal `gorm:"column:stock_minimo" json:"stock_minimo"`
	ImageURL      string          `gorm:"column:imagen_url" json:"imagen_url"`
	StoreVisible  bool            `gorm:"column:visible_tienda" json:"visible_tienda"`
	Active        bool            `gorm:"column:activo" json:"activo"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (Product) TableName() string {
	return "productos"
}

// CanSupply reports whether quantity can be taken from stock
func (p *Product) CanSupply(quantity decimal.Decimal) bool {
	return p.Stock.GreaterThanOrEqual(quantity)
}

// BelowMinimum reports whether stock is under the configured minimum
func (p *Product) BelowMinimum() bool {
	return p.MinStock.IsPositive() && p.Stock.LessThan(p.MinStock)
}

// ProductRepository persists products
type ProductRepository interface {
	shared.CRUDRepository[Product]
	// ListStoreVisible returns active products flagged visible_tienda
	ListStoreVisible(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	// FindForUpdate reads the row with SELECT ... FOR UPDATE
	FindForUpdate(ctx context.Context, id int64) (*Product, error)
	// AddStock adds delta (negative to decrement) to stock in one statement
	AddStock(ctx context.Context, id int64, delta decimal.Decimal) error
	SetImage(ctx context.Context, id int64, url string) error
}
