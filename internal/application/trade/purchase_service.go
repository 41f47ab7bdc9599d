// Package trade registers supplier purchases.
package trade

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	appcompany "github.com/erp/pymes/internal/application/company"
	appinventory "github.com/erp/pymes/internal/application/inventory"
	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNotSupplier is returned when the tercero of a purchase is a customer only
var ErrNotSupplier = shared.ErrInvalidInput.WithMessage("Tercero is not a supplier")

// PurchaseService handles purchase operations
type PurchaseService struct {
	executor apptenant.Executor
	logger   *zap.Logger
	now      func() time.Time
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(executor apptenant.Executor, logger *zap.Logger) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{executor: executor, logger: logger, now: time.Now}
}

// List returns one page of purchase headers
func (s *PurchaseService) List(ctx context.Context, nit string, filter shared.Filter) ([]trade.Purchase, int64, error) {
	var (
		items []trade.Purchase
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Purchases().List(ctx, filter)
		return err
	})
	return items, total, err
}

// Get returns a purchase with its lines
func (s *PurchaseService) Get(ctx context.Context, nit string, id int64) (*trade.Purchase, error) {
	var purchase *trade.Purchase
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		purchase, err = sess.Purchases().FindByID(ctx, id)
		return err
	})
	return purchase, err
}

// Create registers a purchase in one transaction and adds its quantities
// to stock with entrada movements.
func (s *PurchaseService) Create(ctx context.Context, nit string, userID int64, input PurchaseInput) (*trade.Purchase, error) {
	if len(input.Items) == 0 {
		return nil, trade.ErrEmptyPurchase
	}
	for i, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Item %d: quantity must be greater than zero", i+1))
		}
	}

	purchase := &trade.Purchase{
		Number:     input.Number,
		DocumentID: input.DocumentID,
		PartnerID:  input.PartnerID,
		BranchID:   input.BranchID,
		UserID:     userID,
		Date:       s.now(),
		Status:     trade.PurchaseReceived,
		Notes:      input.Notes,
	}
	if input.Date != nil {
		purchase.Date = *input.Date
	}

	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			if input.DocumentID != nil {
				number, err := appcompany.ReserveNumber(ctx, tx, *input.DocumentID, company.DocumentPurchase)
				if err != nil {
					return err
				}
				purchase.Number = number
			}
			if err := checkSupplier(ctx, tx, input.PartnerID, input.BranchID); err != nil {
				return err
			}

			products, err := lockProducts(ctx, tx, input.Items)
			if err != nil {
				return err
			}
			purchase.Items = make([]trade.PurchaseItem, 0, len(input.Items))
			for _, in := range input.Items {
				product := products[in.ProductID]
				item := trade.PurchaseItem{
					ProductID: in.ProductID,
					Quantity:  in.Quantity,
					UnitCost:  product.PurchasePrice,
					TaxRate:   product.TaxRate,
				}
				if in.UnitCost != nil {
					item.UnitCost = *in.UnitCost
				}
				if in.TaxRate != nil {
					item.TaxRate = *in.TaxRate
				}
				purchase.Items = append(purchase.Items, item)
			}
			if err := purchase.CalculateTotals(); err != nil {
				return err
			}
			if err := tx.Purchases().Create(ctx, purchase); err != nil {
				return err
			}

			for _, item := range purchase.Items {
				if err := appinventory.Apply(ctx, tx, &inventory.Movement{
					ProductID:   item.ProductID,
					BranchID:    purchase.BranchID,
					Kind:        inventory.MovementIn,
					Quantity:    item.Quantity,
					Source:      inventory.SourcePurchase,
					ReferenceID: &purchase.ID,
					UserID:      userID,
					Notes:       "Compra " + purchase.Number,
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase registered",
		zap.String("tenant", nit),
		zap.Int64("purchase_id", purchase.ID),
		zap.String("number", purchase.Number),
		zap.String("total", purchase.Total.String()),
	)
	return purchase, nil
}

// Void marks a purchase anulada and takes its quantities back out of
// stock. Stock already sold fails with shared.ErrInsufficientStock.
func (s *PurchaseService) Void(ctx context.Context, nit string, userID, id int64) (*trade.Purchase, error) {
	var purchase *trade.Purchase
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			var err error
			if purchase, err = tx.Purchases().FindForUpdate(ctx, id); err != nil {
				return err
			}
			if err := purchase.Void(); err != nil {
				return err
			}

			lines := make([]PurchaseItemInput, len(purchase.Items))
			needed := make(map[int64]decimal.Decimal, len(purchase.Items))
			for i, item := range purchase.Items {
				lines[i] = PurchaseItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
				needed[item.ProductID] = needed[item.ProductID].Add(item.Quantity)
			}
			products, err := lockProducts(ctx, tx, lines)
			if err != nil {
				return err
			}
			for productID, qty := range needed {
				if product := products[productID]; !product.CanSupply(qty) {
					return shared.ErrInsufficientStock.WithMessage(fmt.Sprintf(
						"Cannot void purchase: product %s has only %s in stock", product.Code, product.Stock.String()))
				}
			}

			if err := tx.Purchases().UpdateStatus(ctx, id, purchase.Status); err != nil {
				return err
			}
			for _, item := range purchase.Items {
				if err := appinventory.Apply(ctx, tx, &inventory.Movement{
					ProductID:   item.ProductID,
					BranchID:    purchase.BranchID,
					Kind:        inventory.MovementOut,
					Quantity:    item.Quantity,
					Source:      inventory.SourcePurchase,
					ReferenceID: &purchase.ID,
					UserID:      userID,
					Notes:       "Anulación compra " + purchase.Number,
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func checkSupplier(ctx context.Context, tx apptenant.Session, partnerID int64, branchID *int64) error {
	supplier, err := tx.Partners().FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Tercero %d does not exist", partnerID))
		}
		return err
	}
	if !supplier.IsSupplier() {
		return ErrNotSupplier
	}
	if branchID != nil {
		if _, err := tx.Branches().FindByID(ctx, *branchID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Sucursal %d does not exist", *branchID))
			}
			return err
		}
	}
	return nil
}

// lockProducts locks the distinct products of the lines in ascending id order
func lockProducts(ctx context.Context, tx apptenant.Session, items []PurchaseItemInput) (map[int64]*catalog.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if !slices.Contains(ids, item.ProductID) {
			ids = append(ids, item.ProductID)
		}
	}
	slices.Sort(ids)

	products := make(map[int64]*catalog.Product, len(ids))
	for _, id := range ids {
		product, err := tx.Products().FindForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Product %d does not exist", id))
			}
			return nil, err
		}
		products[id] = product
	}
	return products, nil
}
