package persistence

import (
	"context"
	"errors"

	"github.com/erp/pymes/internal/domain/tenant"
	"gorm.io/gorm"
)

// GormDirectoryRepository reads empresasconfig from the master pool
type GormDirectoryRepository struct {
	db *gorm.DB
}

// NewGormDirectoryRepository creates a new GormDirectoryRepository
func NewGormDirectoryRepository(db *gorm.DB) *GormDirectoryRepository {
	return &GormDirectoryRepository{db: db}
}

// FindByNIT looks the tenant up by exact NIT. An empty NIT never reaches
// the database.
func (r *GormDirectoryRepository) FindByNIT(ctx context.Context, nit string) (*tenant.DirectoryEntry, error) {
	if nit == "" {
		return nil, tenant.ErrTenantNotFound
	}
	var entry tenant.DirectoryEntry
	if err := r.db.WithContext(ctx).Where("nit = ?", nit).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// List returns every directory row ordered by NIT
func (r *GormDirectoryRepository) List(ctx context.Context) ([]tenant.DirectoryEntry, error) {
	var entries []tenant.DirectoryEntry
	if err := r.db.WithContext(ctx).Order("nit ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ tenant.DirectoryRepository = (*GormDirectoryRepository)(nil)
