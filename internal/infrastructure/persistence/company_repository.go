package persistence

import (
	"context"
	"errors"

	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBranchRepository persists sucursales
type GormBranchRepository struct {
	gormCRUD[company.Branch]
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{
		gormCRUD: newGormCRUD[company.Branch](db, "nombre ASC",
			[]string{"nombre", "ciudad"},
			map[string]string{"activa": "activa", "ciudad": "ciudad"},
		),
	}
}

// GormDocumentRepository persists documentos
type GormDocumentRepository struct {
	gormCRUD[company.Document]
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{
		gormCRUD: newGormCRUD[company.Document](db, "tipo ASC, nombre ASC",
			[]string{"nombre", "prefijo"},
			map[string]string{"tipo": "tipo", "sucursal_id": "sucursal_id", "activo": "activo"},
		),
	}
}

// FindForUpdate locks the document row until the surrounding transaction ends
func (r *GormDocumentRepository) FindForUpdate(ctx context.Context, id int64) (*company.Document, error) {
	var doc company.Document
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Advance increments consecutivo_actual
func (r *GormDocumentRepository) Advance(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&company.Document{}).
		Where("id = ?", id).
		UpdateColumn("consecutivo_actual", gorm.Expr("consecutivo_actual + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ company.BranchRepository   = (*GormBranchRepository)(nil)
	_ company.DocumentRepository = (*GormDocumentRepository)(nil)
)
