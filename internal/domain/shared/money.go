package shared

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmounts returns the pre-tax subtotal and the tax of a document line.
// taxRate is a percentage (19 means 19%). Amounts are rounded to 2 places.
func LineAmounts(quantity, unitPrice, taxRate decimal.Decimal) (subtotal, tax decimal.Decimal) {
	subtotal = quantity.Mul(unitPrice).Round(2)
	tax = subtotal.Mul(taxRate).Div(hundred).Round(2)
	return subtotal, tax
}
