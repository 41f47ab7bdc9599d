// Package mocks holds testify mocks of the tenant repositories, shared by
// the application service tests.
package mocks

import (
	"context"
	"time"

	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/identity"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/partner"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// CRUD mocks shared.CRUDRepository for any entity. Methods pass their own
// name to MethodCalled.
type CRUD[T any] struct {
	mock.Mock
}

func (m *CRUD[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	args := m.MethodCalled("FindByID", ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *CRUD[T]) List(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	args := m.MethodCalled("List", ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]T), args.Get(1).(int64), args.Error(2)
}

func (m *CRUD[T]) Create(ctx context.Context, entity *T) error {
	return m.MethodCalled("Create", ctx, entity).Error(0)
}

func (m *CRUD[T]) Update(ctx context.Context, entity *T) error {
	return m.MethodCalled("Update", ctx, entity).Error(0)
}

func (m *CRUD[T]) Delete(ctx context.Context, id int64) error {
	return m.MethodCalled("Delete", ctx, id).Error(0)
}

// UserRepository mocks identity.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *UserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// BranchRepository mocks company.BranchRepository
type BranchRepository struct {
	CRUD[company.Branch]
}

// PartnerRepository mocks partner.PartnerRepository
type PartnerRepository struct {
	CRUD[partner.Partner]
}

// ReceiptRepository mocks billing.ReceiptRepository
type ReceiptRepository struct {
	CRUD[billing.Receipt]
}

func (m *ReceiptRepository) SumByInvoice(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// DocumentRepository mocks company.DocumentRepository
type DocumentRepository struct {
	CRUD[company.Document]
}

func (m *DocumentRepository) FindForUpdate(ctx context.Context, id int64) (*company.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Document), args.Error(1)
}

func (m *DocumentRepository) Advance(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// ProductRepository mocks catalog.ProductRepository
type ProductRepository struct {
	CRUD[catalog.Product]
}

func (m *ProductRepository) ListStoreVisible(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepository) FindForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *ProductRepository) AddStock(ctx context.Context, id int64, delta decimal.Decimal) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *ProductRepository) SetImage(ctx context.Context, id int64, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

// InvoiceRepository mocks billing.InvoiceRepository
type InvoiceRepository struct {
	mock.Mock
}

func (m *InvoiceRepository) FindByID(ctx context.Context, id int64) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *InvoiceRepository) FindForUpdate(ctx context.Context, id int64) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *InvoiceRepository) List(ctx context.Context, filter shared.Filter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *InvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

// PurchaseRepository mocks trade.PurchaseRepository
type PurchaseRepository struct {
	mock.Mock
}

func (m *PurchaseRepository) FindByID(ctx context.Context, id int64) (*trade.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Purchase), args.Error(1)
}

func (m *PurchaseRepository) FindForUpdate(ctx context.Context, id int64) (*trade.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Purchase), args.Error(1)
}

func (m *PurchaseRepository) List(ctx context.Context, filter shared.Filter) ([]trade.Purchase, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]trade.Purchase), args.Get(1).(int64), args.Error(2)
}

func (m *PurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	return m.Called(ctx, purchase).Error(0)
}

func (m *PurchaseRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

// InventoryRepository mocks inventory.InventoryRepository
type InventoryRepository struct {
	mock.Mock
}

func (m *InventoryRepository) AddBranchStock(ctx context.Context, branchID, productID int64, delta decimal.Decimal) error {
	return m.Called(ctx, branchID, productID, delta).Error(0)
}

func (m *InventoryRepository) ListBranchStock(ctx context.Context, branchID int64) ([]inventory.BranchStock, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.BranchStock), args.Error(1)
}

func (m *InventoryRepository) RecordMovement(ctx context.Context, movement *inventory.Movement) error {
	return m.Called(ctx, movement).Error(0)
}

func (m *InventoryRepository) ListMovements(ctx context.Context, productID int64, filter shared.Filter) ([]inventory.Movement, int64, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.Movement), args.Get(1).(int64), args.Error(2)
}

var (
	_ identity.UserRepository       = (*UserRepository)(nil)
	_ company.BranchRepository      = (*BranchRepository)(nil)
	_ company.DocumentRepository    = (*DocumentRepository)(nil)
	_ catalog.ProductRepository     = (*ProductRepository)(nil)
	_ partner.PartnerRepository     = (*PartnerRepository)(nil)
	_ billing.InvoiceRepository     = (*InvoiceRepository)(nil)
	_ billing.ReceiptRepository     = (*ReceiptRepository)(nil)
	_ trade.PurchaseRepository      = (*PurchaseRepository)(nil)
	_ inventory.InventoryRepository = (*InventoryRepository)(nil)
)
