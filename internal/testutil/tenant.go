package testutil

import (
	"context"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/identity"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/partner"
	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/domain/trade"
)

// StubSession is a tenant session over caller supplied repositories.
// Transaction calls fn with the same session and no real transaction.
type StubSession struct {
	Info          apptenant.Info
	UserRepo      identity.UserRepository
	BranchRepo    company.BranchRepository
	DocumentRepo  company.DocumentRepository
	ProductRepo   catalog.ProductRepository
	PartnerRepo   partner.PartnerRepository
	InvoiceRepo   billing.InvoiceRepository
	ReceiptRepo   billing.ReceiptRepository
	PurchaseRepo  trade.PurchaseRepository
	InventoryRepo inventory.InventoryRepository
}

func (s *StubSession) Tenant() apptenant.Info { return s.Info }
func (s *StubSession) Users() identity.UserRepository { return s.UserRepo }
func (s *StubSession) Branches() company.BranchRepository { return s.BranchRepo }
func (s *StubSession) Documents() company.DocumentRepository { return s.DocumentRepo }
func (s *StubSession) Products() catalog.ProductRepository { return s.ProductRepo }
func (s *StubSession) Partners() partner.PartnerRepository { return s.PartnerRepo }
func (s *StubSession) Invoices() billing.InvoiceRepository { return s.InvoiceRepo }
func (s *StubSession) Receipts() billing.ReceiptRepository { return s.ReceiptRepo }
func (s *StubSession) Purchases() trade.PurchaseRepository { return s.PurchaseRepo }
func (s *StubSession) Inventory() inventory.InventoryRepository { return s.InventoryRepo }

func (s *StubSession) Transaction(_ context.Context, fn func(tx apptenant.Session) error) error {
	return fn(s)
}

// StubExecutor runs every callback against Session, or fails with Err
// before calling it when Err is set.
type StubExecutor struct {
	Session *StubSession
	Err     error
	Report  *tenant.MigrationReport
	// Calls records the NIT of every Run and InitSchema call
	Calls []string
}

func (e *StubExecutor) Run(ctx context.Context, nit string, fn func(ctx context.Context, s apptenant.Session) error) error {
	e.Calls = append(e.Calls, nit)
	if e.Err != nil {
		return e.Err
	}
	return fn(ctx, e.Session)
}

func (e *StubExecutor) InitSchema(_ context.Context, nit string) (*tenant.MigrationReport, error) {
	e.Calls = append(e.Calls, nit)
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Report, nil
}

var (
	_ apptenant.Session  = (*StubSession)(nil)
	_ apptenant.Executor = (*StubExecutor)(nil)
)
