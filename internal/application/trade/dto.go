package trade

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseInput is the body of POST /compras. documento_id is optional;
// without it the supplier's reference in numero is stored as given.
type PurchaseInput struct {
	DocumentID *int64              `json:"documento_id" binding:"omitempty,gt=0"`
	Number     string              `json:"numero" binding:"max=50"`
	PartnerID  int64               `json:"tercero_id" binding:"required,gt=0"`
	BranchID   *int64              `json:"sucursal_id" binding:"omitempty,gt=0"`
	Date       *time.Time          `json:"fecha"`
	Notes      string              `json:"observaciones" binding:"max=1000"`
	Items      []PurchaseItemInput `json:"items" binding:"required,min=1,dive"`
}

// PurchaseItemInput is one purchase line. Cost and IVA default to the
// product's precio_compra and iva when omitted.
type PurchaseItemInput struct {
	ProductID int64            `json:"producto_id" binding:"required,gt=0"`
	Quantity  decimal.Decimal  `json:"cantidad"`
	UnitCost  *decimal.Decimal `json:"costo_unitario"`
	TaxRate   *decimal.Decimal `json:"iva_porcentaje"`
}
