// Package company holds branch and numbering-document models.
package company

import (
	"context"
	"strconv"
	"time"

	"github.com/erp/pymes/internal/domain/shared"
)

// Document kinds
const (
	DocumentInvoice  = "factura"
	DocumentPurchase = "compra"
	DocumentReceipt  = "recibo"
)

// Branch is a row of sucursales
type Branch struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:nombre" json:"nombre"`
	Address   string    `gorm:"column:direccion" json:"direccion"`
	Phone     string    `gorm:"column:telefono" json:"telefono"`
	City      string    `gorm:"column:ciudad" json:"ciudad"`
	Active    bool      `gorm:"column:activa" json:"activa"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (Branch) TableName() string {
	return "sucursales"
}

// Document is a numbering sequence (documentos). Every invoice, purchase or
// receipt takes its number from one document row.
type Document struct {
	ID            int64     `gorm:"column:id;primaryKey" json:"id"`
	BranchID      *int64    `gorm:"column:sucursal_id" json:"sucursal_id,omitempty"`
	Kind          string    `gorm:"column:tipo" json:"tipo"`
	Name          string    `gorm:"column:nombre" json:"nombre"`
	Prefix        string    `gorm:"column:prefijo" json:"prefijo"`
	CurrentNumber int64     `gorm:"column:consecutivo_actual" json:"consecutivo_actual"`
	Resolution    string    `gorm:"column:resolucion" json:"resolucion"`
	Active        bool      `gorm:"column:activo" json:"activo"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (Document) TableName() string {
	return "documentos"
}

// NextNumber renders the number the next issued record will carry
func (d *Document) NextNumber() string {
	return d.Prefix + strconv.FormatInt(d.CurrentNumber, 10)
}

// BranchRepository persists branches
type BranchRepository interface {
	shared.CRUDRepository[Branch]
}

// DocumentRepository persists numbering documents
type DocumentRepository interface {
	shared.CRUDRepository[Document]
	// FindForUpdate reads the row with SELECT ... FOR UPDATE. Must run
	// inside a transaction.
	FindForUpdate(ctx context.Context, id int64) (*Document, error)
	// Advance increments consecutivo_actual by one
	Advance(ctx context.Context, id int64) error
}
