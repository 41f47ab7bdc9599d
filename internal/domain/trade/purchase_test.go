package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchase_CalculateTotals(t *testing.T) {
	p := &Purchase{Items: []PurchaseItem{
		{Quantity: decimal.NewFromInt(10), UnitCost: decimal.RequireFromString("120.50"), TaxRate: decimal.NewFromInt(19)},
	}}

	require.NoError(t, p.CalculateTotals())
	assert.Equal(t, "1205", p.Subtotal.String())
	assert.Equal(t, "228.95", p.Tax.String())
	assert.Equal(t, "1433.95", p.Total.String())
}

func TestPurchase_Void(t *testing.T) {
	p := &Purchase{Status: PurchaseReceived}
	require.NoError(t, p.Void())
	assert.ErrorIs(t, p.Void(), ErrPurchaseVoided)
	assert.ErrorIs(t, (&Purchase{}).CalculateTotals(), ErrEmptyPurchase)
}
