package persistence

import (
	"context"
	"errors"

	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository persists facturas and factura_detalle
type GormInvoiceRepository struct {
	list gormCRUD[billing.Invoice]
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{
		list: newGormCRUD[billing.Invoice](db, "fecha DESC, id DESC",
			[]string{"numero"},
			map[string]string{
				"estado":      "estado",
				"tercero_id":  "tercero_id",
				"sucursal_id": "sucursal_id",
				"metodo_pago": "metodo_pago",
			},
		),
	}
}

// FindByID loads an invoice and its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id int64) (*billing.Invoice, error) {
	return r.find(r.list.db.WithContext(ctx), id)
}

// FindForUpdate loads an invoice and its lines holding a row lock on the header
func (r *GormInvoiceRepository) FindForUpdate(ctx context.Context, id int64) (*billing.Invoice, error) {
	return r.find(r.list.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormInvoiceRepository) find(db *gorm.DB, id int64) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := db.Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// List returns invoice headers without lines
func (r *GormInvoiceRepository) List(ctx context.Context, filter shared.Filter) ([]billing.Invoice, int64, error) {
	return r.list.List(ctx, filter)
}

// Create inserts the header, then the lines with the new header id.
// Callers run it inside a transaction.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	db := r.list.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(invoice).Error; err != nil {
		return err
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
	}
	return db.Create(&invoice.Items).Error
}

// UpdateStatus changes estado
func (r *GormInvoiceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := r.list.db.WithContext(ctx).
		Model(&billing.Invoice{}).
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

// GormReceiptRepository persists recibos_caja
type GormReceiptRepository struct {
	gormCRUD[billing.Receipt]
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{
		gormCRUD: newGormCRUD[billing.Receipt](db, "fecha DESC, id DESC",
			[]string{"numero", "concepto"},
			map[string]string{"tercero_id": "tercero_id", "factura_id": "factura_id", "metodo_pago": "metodo_pago"},
		),
	}
}

// SumByInvoice totals valor over the receipts of invoiceID in one query
func (r *GormReceiptRepository) SumByInvoice(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&billing.Receipt{}).
		Select("COALESCE(SUM(valor), 0)").
		Where("factura_id = ?", invoiceID).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

var (
	_ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
	_ billing.ReceiptRepository = (*GormReceiptRepository)(nil)
)
