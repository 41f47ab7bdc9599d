package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/testutil"
	"github.com/erp/pymes/internal/testutil/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	svc       *Service
	products  *mocks.ProductRepository
	branches  *mocks.BranchRepository
	inventory *mocks.InventoryRepository
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		products:  new(mocks.ProductRepository),
		branches:  new(mocks.BranchRepository),
		inventory: new(mocks.InventoryRepository),
	}
	executor := &testutil.StubExecutor{Session: &testutil.StubSession{
		ProductRepo:   f.products,
		BranchRepo:    f.branches,
		InventoryRepo: f.inventory,
	}}
	f.svc = NewService(executor, zaptest.NewLogger(t))
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches decimals by value, since equal decimals may differ in
// internal representation.
func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func TestService_Adjust(t *testing.T) {
	f := newFixture(t)
	branchID := int64(2)
	f.branches.On("FindByID", mock.Anything, branchID).Return(&company.Branch{ID: branchID}, nil)
	f.products.On("FindForUpdate", mock.Anything, int64(7)).Return(&catalog.Product{ID: 7, Stock: dec("10")}, nil)
	f.products.On("AddStock", mock.Anything, int64(7), decEq("-3")).Return(nil)
	f.inventory.On("AddBranchStock", mock.Anything, branchID, int64(7), decEq("-3")).Return(nil)
	f.inventory.On("RecordMovement", mock.Anything, mock.MatchedBy(func(m *inventory.Movement) bool {
		return m.Kind == inventory.MovementAdjustment && m.Source == inventory.SourceManual && m.UserID == 11
	})).Return(nil)

	res, err := f.svc.Adjust(context.Background(), "800100200", 11, AdjustmentInput{
		ProductID: 7, BranchID: &branchID, Quantity: dec("-3"), Notes: "conteo",
	})

	require.NoError(t, err)
	assert.Equal(t, "7", res.Stock.String())
	f.products.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
}

func TestService_Adjust_Rejections(t *testing.T) {
	t.Run("zero quantity", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Adjust(context.Background(), "800100200", 1, AdjustmentInput{ProductID: 7})
		assert.ErrorIs(t, err, inventory.ErrZeroQuantity)
	})

	t.Run("would go negative", func(t *testing.T) {
		f := newFixture(t)
		f.products.On("FindForUpdate", mock.Anything, int64(7)).Return(&catalog.Product{ID: 7, Stock: dec("2")}, nil)

		_, err := f.svc.Adjust(context.Background(), "800100200", 1, AdjustmentInput{ProductID: 7, Quantity: dec("-2.5")})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.products.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown branch", func(t *testing.T) {
		f := newFixture(t)
		branchID := int64(99)
		f.branches.On("FindByID", mock.Anything, branchID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Adjust(context.Background(), "800100200", 1, AdjustmentInput{ProductID: 7, BranchID: &branchID, Quantity: dec("1")})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.products.AssertNotCalled(t, "FindForUpdate", mock.Anything, mock.Anything)
	})
}

func TestApply_WithoutBranch(t *testing.T) {
	f := newFixture(t)
	sess := &testutil.StubSession{ProductRepo: f.products, InventoryRepo: f.inventory}
	m := &inventory.Movement{ProductID: 4, Kind: inventory.MovementIn, Quantity: dec("5")}
	f.products.On("AddStock", mock.Anything, int64(4), decEq("5")).Return(nil)
	f.inventory.On("RecordMovement", mock.Anything, m).Return(nil)

	require.NoError(t, Apply(context.Background(), sess, m))

	f.inventory.AssertNotCalled(t, "AddBranchStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_StockFailure(t *testing.T) {
	f := newFixture(t)
	sess := &testutil.StubSession{ProductRepo: f.products, InventoryRepo: f.inventory}
	boom := errors.New("deadlock found")
	f.products.On("AddStock", mock.Anything, int64(4), mock.Anything).Return(boom)

	err := Apply(context.Background(), sess, &inventory.Movement{ProductID: 4, Kind: inventory.MovementOut, Quantity: dec("1")})

	assert.ErrorIs(t, err, boom)
	f.inventory.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything)
}

func TestService_BranchStock(t *testing.T) {
	f := newFixture(t)
	f.branches.On("FindByID", mock.Anything, int64(2)).Return(&company.Branch{ID: 2}, nil)
	f.inventory.On("ListBranchStock", mock.Anything, int64(2)).Return([]inventory.BranchStock{{ProductID: 7, Quantity: dec("4")}}, nil)

	rows, err := f.svc.BranchStock(context.Background(), "800100200", 2)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].ProductID)
}
