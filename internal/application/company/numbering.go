package company

import (
	"context"
	"fmt"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/shared"
)

// ReserveNumber takes the next number of document id inside the caller's
// transaction. The document row stays locked until the transaction ends,
// so concurrent issuers of the same document are serialized and never
// share a number. The document must be active and of the given kind.
func ReserveNumber(ctx context.Context, tx apptenant.Session, id int64, kind string) (string, error) {
	doc, err := tx.Documents().FindForUpdate(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.Kind != kind {
		return "", shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Document %d is not of type %s", id, kind))
	}
	if !doc.Active {
		return "", shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Document %d is inactive", id))
	}
	number := doc.NextNumber()
	if err := tx.Documents().Advance(ctx, id); err != nil {
		return "", fmt.Errorf("advance document %d: %w", id, err)
	}
	return number, nil
}
