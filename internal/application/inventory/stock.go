package inventory

import (
	"context"
	"fmt"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/inventory"
)

// Apply moves stock for m inside the caller's transaction: it adds the
// movement delta to productos.stock, to the branch row when m carries a
// branch, and appends m to the movement log. Callers hold the product row
// lock and have already checked availability.
func Apply(ctx context.Context, tx apptenant.Session, m *inventory.Movement) error {
	delta := m.Delta()
	if err := tx.Products().AddStock(ctx, m.ProductID, delta); err != nil {
		return fmt.Errorf("update stock of product %d: %w", m.ProductID, err)
	}
	if m.BranchID != nil {
		if err := tx.Inventory().AddBranchStock(ctx, *m.BranchID, m.ProductID, delta); err != nil {
			return fmt.Errorf("update branch %d stock of product %d: %w", *m.BranchID, m.ProductID, err)
		}
	}
	if err := tx.Inventory().RecordMovement(ctx, m); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}
	return nil
}
