package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	appcompany "github.com/erp/pymes/internal/application/company"
	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/company"
	"github.com/erp/pymes/internal/domain/shared"
	"go.uber.org/zap"
)


// ReceiptService handles cash receipts
type ReceiptService struct {
	executor apptenant.Executor
	logger   *zap.Logger
	now      func() time.Time
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(executor apptenant.Executor, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{executor: executor, logger: logger, now: time.Now}
}

// List returns one page of receipts
func (s *ReceiptService) List(ctx context.Context, nit string, filter shared.Filter) ([]billing.Receipt, int64, error) {
	var (
		items []billing.Receipt
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Receipts().List(ctx, filter)
		return err
	})
	return items, total, err
}

// Create records a receipt against an invoice, a tercero or both. A receipt
// against an invoice takes the invoice's tercero and marks the invoice
// pagada once its receipts cover the total.
func (s *ReceiptService) Create(ctx context.Context, nit string, userID int64, input ReceiptInput) (*billing.Receipt, error) {
	if input.PartnerID == nil && input.InvoiceID == nil {
		return nil, shared.ErrInvalidInput.WithMessage("tercero_id or factura_id is required")
	}
	receipt := &billing.Receipt{
		PartnerID:     input.PartnerID,
		InvoiceID:     input.InvoiceID,
		UserID:        userID,
		Date:          s.now(),
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Concept:       input.Concept,
	}
	if err := receipt.Validate(); err != nil {
		return nil, err
	}
	if input.Date != nil {
		receipt.Date = *input.Date
	}
	if receipt.PaymentMethod == "" {
		receipt.PaymentMethod = billing.PaymentCash
	}

	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Transaction(ctx, func(tx apptenant.Session) error {
			var invoice *billing.Invoice
			if input.InvoiceID != nil {
				var err error
				if invoice, err = s.invoiceFor(ctx, tx, receipt); err != nil {
					return err
				}
			} else if _, err := tx.Partners().FindByID(ctx, *input.PartnerID); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Tercero %d does not exist", *input.PartnerID))
				}
				return err
			}

			if input.DocumentID != nil {
				number, err := appcompany.ReserveNumber(ctx, tx, *input.DocumentID, company.DocumentReceipt)
				if err != nil {
					return err
				}
				receipt.Number = number
			}
			if err := tx.Receipts().Create(ctx, receipt); err != nil {
				return err
			}
			if invoice != nil {
				return s.settle(ctx, tx, invoice)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// invoiceFor locks the receipt's invoice and fills the tercero from it
func (s *ReceiptService) invoiceFor(ctx context.Context, tx apptenant.Session, receipt *billing.Receipt) (*billing.Invoice, error) {
	invoice, err := tx.Invoices().FindForUpdate(ctx, *receipt.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == billing.InvoiceVoided {
		return nil, billing.ErrInvoiceVoided
	}
	if receipt.PartnerID != nil && *receipt.PartnerID != invoice.PartnerID {
		return nil, shared.ErrInvalidInput.WithMessage("tercero_id does not match the invoice")
	}
	partnerID := invoice.PartnerID
	receipt.PartnerID = &partnerID
	return invoice, nil
}

// settle marks the invoice pagada when its receipts cover the total
func (s *ReceiptService) settle(ctx context.Context, tx apptenant.Session, invoice *billing.Invoice) error {
	if invoice.Status != billing.InvoiceIssued {
		return nil
	}
	paid, err := tx.Receipts().SumByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if paid.LessThan(invoice.Total) {
		return nil
	}
	if err := tx.Invoices().UpdateStatus(ctx, invoice.ID, billing.InvoicePaid); err != nil {
		return err
	}
	s.logger.Info("Invoice paid",
		zap.Int64("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
		zap.String("paid", paid.String()),
	)
	return nil
}
