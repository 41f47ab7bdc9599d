package tenant

import (
	"context"

	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/identity"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/partner"
	domaintenant "github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/domain/trade"
)

// Info identifies the tenant a session is bound to
type Info struct {
	NIT  string
	Name string
}

// Session gives access to the repositories of one tenant database over one
// connection. A Session is only valid inside the Executor.Run callback that
// produced it and must not be retained after the callback returns.
type Session interface {
	Tenant() Info

	Users() identity.UserRepository
	Branches() company.BranchRepository
	Documents() company.DocumentRepository
	Products() catalog.ProductRepository
	Partners() partner.PartnerRepository
	Invoices() billing.InvoiceRepository
	Receipts() billing.ReceiptRepository
	Purchases() trade.PurchaseRepository
	Inventory() inventory.InventoryRepository

	// Transaction runs fn inside a database transaction. The session passed
	// to fn is bound to the transaction; fn's error rolls it back.
	Transaction(ctx context.Context, fn func(tx Session) error) error
}

// Executor runs work against a tenant database identified by NIT.
// Run resolves the tenant, opens a dedicated connection, calls fn, and
// releases the connection on every exit path. Database errors returned by
// fn are translated into domain errors.
type Executor interface {
	Run(ctx context.Context, nit string, fn func(ctx context.Context, s Session) error) error
	// InitSchema runs the schema initializer for the tenant explicitly
	InitSchema(ctx context.Context, nit string) (*domaintenant.MigrationReport, error)
}
