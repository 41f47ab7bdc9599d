// Package billing issues and voids sales invoices and records cash receipts.
package billing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	appcompany "github.com/erp/pymes/internal/application/company"
	appinventory "github.com/erp/pymes/internal/application/inventory"
	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice operations
type InvoiceService struct {
	executor apptenant.Executor
	logger   *zap.Logger
	now      func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(executor apptenant.Executor, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{executor: executor, logger: logger, now: time.Now}
}

// List returns one page of invoice headers
func (s *InvoiceService) List(ctx context.Context, nit string, filter shared.Filter) ([]billing.Invoice, int64, error) {
	var (
		items []billing.Invoice
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Invoices().List(ctx, filter)
		return err
	})
	return items, total, err
}

// Get returns an invoice with its lines
func (s *InvoiceService) Get(ctx context.Context, nit string, id int64) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		invoice, err = sess.Invoices().FindByID(ctx, id)
		return err
	})
	return invoice, err
}

// Create issues an invoice in one transaction. The numbering document and
// every product row are locked, stock is checked and decremented, one
// salida movement is logged per line and the document sequence advances.
// Any failure rolls everything back.
func (s *InvoiceService) Create(ctx context.Context, nit string, userID int64, input InvoiceInput) (*billing.Invoice, error) {
	if len(input.Items) == 0 {
		return nil, billing.ErrEmptyInvoice
	}
	for i, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Item %d: quantity must be greater than zero", i+1))
		}
	}

	invoice := &billing.Invoice{
		DocumentID:    input.DocumentID,
		PartnerID:     input.PartnerID,
		BranchID:      input.BranchID,
		UserID:        userID,
		Date:          s.now(),
		PaymentMethod: input.PaymentMethod,
		Status:        billing.InvoiceIssued,
		Notes:         input.Notes,
	}
	if input.Date != nil {
		invoice.Date = *input.Date
	}
	if invoice.PaymentMethod == "" {
		invoice.PaymentMethod = billing.PaymentCash
	}

	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			number, err := appcompany.ReserveNumber(ctx, tx, input.DocumentID, company.DocumentInvoice)
			if err != nil {
				return err
			}
			invoice.Number = number

			if err := checkParties(ctx, tx, input.PartnerID, input.BranchID); err != nil {
				return err
			}

			products, err := lockProducts(ctx, tx, input.Items)
			if err != nil {
				return err
			}
			invoice.Items = make([]billing.InvoiceItem, 0, len(input.Items))
			for _, in := range input.Items {
				product := products[in.ProductID]
				item := billing.InvoiceItem{
					ProductID: in.ProductID,
					Quantity:  in.Quantity,
					UnitPrice: product.SalePrice,
					TaxRate:   product.TaxRate,
				}
				if in.UnitPrice != nil {
					item.UnitPrice = *in.UnitPrice
				}
				if in.TaxRate != nil {
					item.TaxRate = *in.TaxRate
				}
				invoice.Items = append(invoice.Items, item)
			}
			if err := invoice.CalculateTotals(); err != nil {
				return err
			}
			if err := tx.Invoices().Create(ctx, invoice); err != nil {
				return err
			}

			for _, item := range invoice.Items {
				if err := appinventory.Apply(ctx, tx, &inventory.Movement{
					ProductID:   item.ProductID,
					BranchID:    invoice.BranchID,
					Kind:        inventory.MovementOut,
					Quantity:    item.Quantity,
					Source:      inventory.SourceInvoice,
					ReferenceID: &invoice.ID,
					UserID:      userID,
					Notes:       "Factura " + invoice.Number,
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

	s.logger.Info("Invoice issued",
		zap.String("tenant", nit),
		zap.Int64("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
		zap.String("total", invoice.Total.String()),
	)
	return invoice, nil
}

// Void marks an invoice anulada and returns its quantities to stock with
// entrada movements. Voiding twice fails with billing.ErrInvoiceVoided.
func (s *InvoiceService) Void(ctx context.Context, nit string, userID, id int64) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			var err error
			if invoice, err = tx.Invoices().FindForUpdate(ctx, id); err != nil {
				return err
			}
			if err := invoice.Void(); err != nil {
				return err
			}
			if err := tx.Invoices().UpdateStatus(ctx, id, invoice.Status); err != nil {
				return err
			}
			for _, item := range invoice.Items {
				if err := appinventory.Apply(ctx, tx, &inventory.Movement{
					ProductID:   item.ProductID,
					BranchID:    invoice.BranchID,
					Kind:        inventory.MovementIn,
					Quantity:    item.Quantity,
					Source:      inventory.SourceInvoice,
					ReferenceID: &invoice.ID,
					UserID:      userID,
					Notes:       "Anulación factura " + invoice.Number,
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

	s.logger.Info("Invoice voided",
		zap.String("tenant", nit),
		zap.Int64("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
	)
	return invoice, nil
}

// checkParties verifies the tercero and optional branch exist
func checkParties(ctx context.Context, tx apptenant.Session, partnerID int64, branchID *int64) error {
	if _, err := tx.Partners().FindByID(ctx, partnerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Tercero %d does not exist", partnerID))
		}
		return err
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

// lockProducts locks every distinct product of the lines in ascending id
// order and checks that stock covers the summed quantity per product.
func lockProducts(ctx context.Context, tx apptenant.Session, items []InvoiceItemInput) (map[int64]*catalog.Product, error) {
	requested := make(map[int64]decimal.Decimal, len(items))
	order := make([]int64, 0, len(items))
	for _, item := range items {
		if _, seen := requested[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		requested[item.ProductID] = requested[item.ProductID].Add(item.Quantity)
	}
	slices.Sort(order)

	products := make(map[int64]*catalog.Product, len(order))
	for _, id := range order {
		product, err := tx.Products().FindForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Product %d does not exist", id))
			}
			return nil, err
		}
		if !product.Active {
			return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Product %s is inactive", product.Code))
		}
		if !product.CanSupply(requested[id]) {
			return nil, shared.ErrInsufficientStock.WithMessage(fmt.Sprintf(
				"Insufficient stock for %s: available %s, requested %s",
				product.Code, product.Stock.String(), requested[id].String()))
		}
		products[id] = product
	}
	return products, nil
}
