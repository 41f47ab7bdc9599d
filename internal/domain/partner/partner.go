// Package partner holds third parties (terceros): customers and suppliers.
package partner

import (
	"time"

	"github.com/erp/pymes/internal/domain/shared"
)

// Partner kinds
const (
	KindCustomer = "cliente"
	KindSupplier = "proveedor"
	KindBoth     = "ambos"
)

// Partner is a row of terceros
type Partner struct {
	ID             int64     `gorm:"column:id;primaryKey" json:"id"`
	DocumentType   string    `gorm:"column:tipo_documento" json:"tipo_documento"`
	DocumentNumber string    `gorm:"column:numero_documento" json:"numero_documento"`
	Name           string    `gorm:"column:nombre" json:"nombre"`
	Kind           string    `gorm:"column:tipo" json:"tipo"`
	Email          string    `gorm:"column:email" json:"email"`
	Phone          string    `gorm:"column:telefono" json:"telefono"`
	Address        string    `gorm:"column:direccion" json:"direccion"`
	City           string    `gorm:"column:ciudad" json:"ciudad"`
	Active         bool      `gorm:"column:activo" json:"activo"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (Partner) TableName() string {
	return "terceros"
}

// IsSupplier reports whether purchases may be registered against p
func (p *Partner) IsSupplier() bool {
	return p.Kind == KindSupplier || p.Kind == KindBoth
}

// PartnerRepository persists terceros
type PartnerRepository interface {
	shared.CRUDRepository[Partner]
}
