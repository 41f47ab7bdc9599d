package persistence

import (
	"github.com/erp/pymes/internal/domain/partner"
	"gorm.io/gorm"
)

// GormPartnerRepository persists terceros
type GormPartnerRepository struct {
	gormCRUD[partner.Partner]
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{
		gormCRUD: newGormCRUD[partner.Partner](db, "nombre ASC",
			[]string{"nombre", "numero_documento", "email"},
			map[string]string{"tipo": "tipo", "activo": "activo", "ciudad": "ciudad"},
		),
	}
}

var _ partner.PartnerRepository = (*GormPartnerRepository)(nil)
