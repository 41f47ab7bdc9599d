package inventory

import (
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AdjustmentInput is the body of POST /inventario/ajustes. Quantity is
// signed: positive adds stock, negative removes it.
type AdjustmentInput struct {
	ProductID int64           `json:"producto_id" binding:"required,gt=0"`
	BranchID  *int64          `json:"sucursal_id" binding:"omitempty,gt=0"`
	Quantity  decimal.Decimal `json:"cantidad"`
	Notes     string          `json:"observaciones" binding:"max=500"`
}

// AdjustmentResult is the recorded movement and the resulting product stock
type AdjustmentResult struct {
	Movement *inventory.Movement `json:"movimiento"`
	Stock    decimal.Decimal     `json:"stock"`
}
