package sales

import (
	"sort"
	"time"

	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clone builds a fresh draft order from an existing one. The clone keeps the
// commercial content (customer, shipping address, order notes, products,
// quantities, prices, discounts, lot requests, line notes) and resets
// everything tied to the source order's workflow:
//
//   - status is draft, confirmation/ship timestamps are cleared
//   - customer PO and promised/required dates are cleared
//   - fulfillment quantities are zeroed
//   - lines are renumbered 1..n in the source's line-number order
//   - allergen validation is reset and must be re-run for the new order
//
// Order notes are carried verbatim, cancellation audit notes included.
// Totals are recomputed from the cloned lines rather than copied.
func Clone(src *SalesOrder, orderNumber string, orderDate time.Time) (*SalesOrder, error) {
	if src == nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source order is required")
	}

	clone, err := NewSalesOrder(src.TenantID, orderNumber, src.CustomerID, orderDate)
	if err != nil {
		return nil, err
	}

	clone.ShippingAddressID = src.ShippingAddressID
	clone.AllergenValidated = false
	if src.Notes != nil {
		n := *src.Notes
		clone.Notes = &n
	}

	srcLines := make([]SalesOrderLine, len(src.Lines))
	copy(srcLines, src.Lines)
	sort.Slice(srcLines, func(i, j int) bool {
		return srcLines[i].LineNumber < srcLines[j].LineNumber
	})

	now := time.Now()
	for idx, srcLine := range srcLines {
		line := SalesOrderLine{
			ID:                uuid.New(),
			OrderID:           clone.ID,
			LineNumber:        idx + 1,
			ProductID:         srcLine.ProductID,
			QuantityOrdered:   srcLine.QuantityOrdered,
			QuantityAllocated: decimal.Zero,
			QuantityPicked:    decimal.Zero,
			QuantityPacked:    decimal.Zero,
			QuantityShipped:   decimal.Zero,
			UnitPrice:         srcLine.UnitPrice,
			RequestedLot:      srcLine.RequestedLot,
			Notes:             srcLine.Notes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if srcLine.DiscountType != nil {
			dt := *srcLine.DiscountType
			line.DiscountType = &dt
		}
		if srcLine.DiscountValue != nil {
			dv := *srcLine.DiscountValue
			line.DiscountValue = &dv
		}
		line.LineTotal = LineTotalWithDiscount(line.QuantityOrdered, line.UnitPrice, line.DiscountType, line.DiscountValue)
		clone.Lines = append(clone.Lines, line)
	}

	clone.recalculateTotals()
	return clone, nil
}
