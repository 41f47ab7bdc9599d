package persistence

import (
	"context"
	"errors"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseRepository persists compras and compras_detalle
type GormPurchaseRepository struct {
	list gormCRUD[trade.Purchase]
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{
		list: newGormCRUD[trade.Purchase](db, "fecha DESC, id DESC",
			[]string{"numero", "observaciones"},
			map[string]string{"estado": "estado", "tercero_id": "tercero_id", "sucursal_id": "sucursal_id"},
		),
	}
}

// FindByID loads a purchase and its lines
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id int64) (*trade.Purchase, error) {
	return r.find(r.list.db.WithContext(ctx), id)
}

// FindForUpdate loads a purchase and its lines holding a row lock on the header
func (r *GormPurchaseRepository) FindForUpdate(ctx context.Context, id int64) (*trade.Purchase, error) {
	return r.find(r.list.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPurchaseRepository) find(db *gorm.DB, id int64) (*trade.Purchase, error) {
	var purchase trade.Purchase
	if err := db.Preload("Items").First(&purchase, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// List returns purchase headers without lines
func (r *GormPurchaseRepository) List(ctx context.Context, filter shared.Filter) ([]trade.Purchase, int64, error) {
	return r.list.List(ctx, filter)
}

// Create inserts header and lines
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	db := r.list.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(purchase).Error; err != nil {
		return err
	}
	if len(purchase.Items) == 0 {
		return nil
	}
	for i := range purchase.Items {
		purchase.Items[i].PurchaseID = purchase.ID
	}
	return db.Create(&purchase.Items).Error
}

// UpdateStatus changes estado
func (r *GormPurchaseRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := r.list.db.WithContext(ctx).
		Model(&trade.Purchase{}).
		Where("id = ?", id).
		Update("estado", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ trade.PurchaseRepository = (*GormPurchaseRepository)(nil)
