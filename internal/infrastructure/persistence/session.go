package persistence

import (
	"context"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/identity"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/partner"
	"github.com/erp/pymes/internal/domain/trade"
	"gorm.io/gorm"
)

// TenantSession implements apptenant.Session over one tenant connection.
// Repositories are built on demand and share the session's *gorm.DB, so
// inside Transaction they all run on the same transaction.
type TenantSession struct {
	db   *gorm.DB
	info apptenant.Info
}

// NewTenantSession binds a session to db
func NewTenantSession(db *gorm.DB, info apptenant.Info) *TenantSession {
	return &TenantSession{db: db, info: info}
}

func (s *TenantSession) Tenant() apptenant.Info { return s.info }

func (s *TenantSession) Users() identity.UserRepository { return NewGormUserRepository(s.db) }

func (s *TenantSession) Branches() company.BranchRepository { return NewGormBranchRepository(s.db) }

func (s *TenantSession) Documents() company.DocumentRepository {
	return NewGormDocumentRepository(s.db)
}

func (s *TenantSession) Products() catalog.ProductRepository { return NewGormProductRepository(s.db) }

func (s *TenantSession) Partners() partner.PartnerRepository { return NewGormPartnerRepository(s.db) }

func (s *TenantSession) Invoices() billing.InvoiceRepository { return NewGormInvoiceRepository(s.db) }

func (s *TenantSession) Receipts() billing.ReceiptRepository { return NewGormReceiptRepository(s.db) }

func (s *TenantSession) Purchases() trade.PurchaseRepository {
	return NewGormPurchaseRepository(s.db)
}

func (s *TenantSession) Inventory() inventory.InventoryRepository {
	return NewGormInventoryRepository(s.db)
}

// Transaction runs fn in a database transaction. If fn returns an error
// the transaction is rolled back, otherwise it is committed.
func (s *TenantSession) Transaction(ctx context.Context, fn func(tx apptenant.Session) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TenantSession{db: tx, info: s.info})
	})
}

var _ apptenant.Session = (*TenantSession)(nil)
