package sales

import (
	"github.com/shopspring/decimal"
)

// DiscountType identifies how a line discount is applied
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// LineTotal computes quantity * unitPrice rounded to 2 decimal places
// (half away from zero at the cent).
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// LineTotalWithDiscount computes a line total after applying an optional
// discount. A percent discount reduces the subtotal by value%, a fixed
// discount subtracts value outright. The result is clamped at zero.
func LineTotalWithDiscount(quantity, unitPrice decimal.Decimal, discountType *DiscountType, discountValue *decimal.Decimal) decimal.Decimal {
	subtotal := quantity.Mul(unitPrice)
	if discountType == nil || discountValue == nil || discountValue.IsZero() {
		return subtotal.Round(2)
	}

	var total decimal.Decimal
	switch *discountType {
	case DiscountPercent:
		factor := decimal.NewFromInt(1).Sub(discountValue.Div(decimal.NewFromInt(100)))
		total = subtotal.Mul(factor)
	case DiscountFixed:
		total = subtotal.Sub(*discountValue)
	default:
		total = subtotal
	}

	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}

// OrderTotal computes the order total as the sum of per-line totals,
// rounded to 2 decimal places. Returns zero for an empty line list.
func OrderTotal(lines []SalesOrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotalWithDiscount(line.QuantityOrdered, line.UnitPrice, line.DiscountType, line.DiscountValue))
	}
	return total.Round(2)
}
