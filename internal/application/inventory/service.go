// Package inventory exposes branch stock, the movement log and manual stock
// adjustments.
package inventory

import (
	"context"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles inventory queries and adjustments
type Service struct {
	executor apptenant.Executor
	logger   *zap.Logger
}

// NewService creates a new inventory Service
func NewService(executor apptenant.Executor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{executor: executor, logger: logger}
}

// BranchStock lists the stock rows of one branch
func (s *Service) BranchStock(ctx context.Context, nit string, branchID int64) ([]inventory.BranchStock, error) {
	var rows []inventory.BranchStock
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		if _, err := sess.Branches().FindByID(ctx, branchID); err != nil {
			return err
		}
		var err error
		rows, err = sess.Inventory().ListBranchStock(ctx, branchID)
		return err
	})
	return rows, err
}

// Movements returns one page of the movement log. productID 0 lists every
// product.
func (s *Service) Movements(ctx context.Context, nit string, productID int64, filter shared.Filter) ([]inventory.Movement, int64, error) {
	var (
		items []inventory.Movement
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Inventory().ListMovements(ctx, productID, filter)
		return err
	})
	return items, total, err
}

// Adjust applies a manual stock correction under the product row lock. A
// correction that would leave negative stock fails with
// shared.ErrInsufficientStock.
func (s *Service) Adjust(ctx context.Context, nit string, userID int64, input AdjustmentInput) (*AdjustmentResult, error) {
	if input.Quantity.IsZero() {
		return nil, inventory.ErrZeroQuantity
	}

	movement := &inventory.Movement{
		ProductID: input.ProductID,
		BranchID:  input.BranchID,
		Kind:      inventory.MovementAdjustment,
		Quantity:  input.Quantity,
		Source:    inventory.SourceManual,
		UserID:    userID,
		Notes:     input.Notes,
	}
	result := &AdjustmentResult{Movement: movement}

	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			if input.BranchID != nil {
				if _, err := tx.Branches().FindByID(ctx, *input.BranchID); err != nil {
					return err
				}
			}
			product, err := tx.Products().FindForUpdate(ctx, input.ProductID)
			if err != nil {
				return err
			}
			next := product.Stock.Add(input.Quantity)
			if next.IsNegative() {
				return shared.ErrInsufficientStock
			}
			if err := Apply(ctx, tx, movement); err != nil {
				return err
			}
			result.Stock = next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock adjusted",
		zap.String("tenant", nit),
		zap.Int64("product_id", input.ProductID),
		zap.String("quantity", input.Quantity.String()),
		zap.String("stock", result.Stock.String()),
	)
	return result, nil
}
