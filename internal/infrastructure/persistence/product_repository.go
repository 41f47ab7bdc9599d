package persistence

import (
	"context"
	"errors"

	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository persists productos
type GormProductRepository struct {
	gormCRUD[catalog.Product]
}

// NewGormProductRepository creates a new GormProductRepository. Update
// leaves stock and imagen_url alone: they change only through AddStock and
// SetImage, so an edit never writes back a stale value.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	crud := newGormCRUD[catalog.Product](db, "nombre ASC",
		[]string{"nombre", "codigo", "codigo_barras"},
		map[string]string{
			"categoria":      "categoria",
			"activo":         "activo",
			"visible_tienda": "visible_tienda",
		},
	)
	crud.preserved = []string{"stock", "imagen_url"}
	return &GormProductRepository{gormCRUD: crud}
}

// ListStoreVisible lists active products published to the store catalog
func (r *GormProductRepository) ListStoreVisible(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	f := filter
	f.Filters = map[string]any{"activo": true, "visible_tienda": true}
	if c, ok := filter.Filters["categoria"]; ok {
		f.Filters["categoria"] = c
	}
	return r.List(ctx, f)
}

// FindForUpdate locks the product row until the surrounding transaction ends
func (r *GormProductRepository) FindForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// AddStock applies delta to stock in a single UPDATE
func (r *GormProductRepository) AddStock(ctx context.Context, id int64, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetImage stores the object key of the product image
func (r *GormProductRepository) SetImage(ctx context.Context, id int64, url string) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("imagen_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
