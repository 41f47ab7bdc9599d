package persistence

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository persists inventario_sucursales and
// movimientos_inventario
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// AddBranchStock inserts the branch row or adds delta to it. Relies on the
// unique (sucursal_id, producto_id) key.
func (r *GormInventoryRepository) AddBranchStock(ctx context.Context, branchID, productID int64, delta decimal.Decimal) error {
	now := time.Now()
	row := inventory.BranchStock{
		BranchID:  branchID,
		ProductID: productID,
		Quantity:  delta,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoUpdates: clause.Assignments(map[string]any{
				"cantidad":   gorm.Expr("cantidad + ?", delta),
				"updated_at": now,
			}),
		}).
		Create(&row).Error
}

// ListBranchStock returns stock rows for one branch
func (r *GormInventoryRepository) ListBranchStock(ctx context.Context, branchID int64) ([]inventory.BranchStock, error) {
	var rows []inventory.BranchStock
	if err := r.db.WithContext(ctx).
		Where("sucursal_id = ?", branchID).
		Order("producto_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RecordMovement appends a movement
func (r *GormInventoryRepository) RecordMovement(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListMovements returns movements newest first. productID 0 lists all.
func (r *GormInventoryRepository) ListMovements(ctx context.Context, productID int64, filter shared.Filter) ([]inventory.Movement, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&inventory.Movement{})
		if productID > 0 {
			q = q.Where("producto_id = ?", productID)
		}
		if kind, ok := filter.Filters["tipo"]; ok {
			q = q.Where("tipo = ?", kind)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []inventory.Movement
	if err := scoped().
		Order("id DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var _ inventory.InventoryRepository = (*GormInventoryRepository)(nil)
