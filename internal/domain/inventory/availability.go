package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Availability reports how a requested quantity compares to current stock
// for one product. The check is advisory: insufficient stock never blocks an
// order, it only informs the person confirming it.
type Availability struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Available  decimal.Decimal `json:"available"`
	Requested  decimal.Decimal `json:"requested"`
	Sufficient bool            `json:"sufficient"`
}

// AvailabilityChecker answers stock questions for order lines
type AvailabilityChecker struct {
	stockLevels StockLevelRepository
}

// NewAvailabilityChecker creates a checker backed by the given repository
func NewAvailabilityChecker(stockLevels StockLevelRepository) *AvailabilityChecker {
	return &AvailabilityChecker{stockLevels: stockLevels}
}

// Check compares the requested quantity against available stock for one
// product. A product with no stock record is treated as zero on hand.
func (c *AvailabilityChecker) Check(ctx context.Context, tenantID, productID uuid.UUID, requested decimal.Decimal) (*Availability, error) {
	available := decimal.Zero

	level, err := c.stockLevels.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if level != nil {
		available = level.Available()
	}

	return &Availability{
		ProductID:  productID,
		Available:  available,
		Requested:  requested,
		Sufficient: available.GreaterThanOrEqual(requested),
	}, nil
}

// CheckMany runs Check for a set of requested quantities keyed by product.
// Results are returned in no particular order.
func (c *AvailabilityChecker) CheckMany(ctx context.Context, tenantID uuid.UUID, requests map[uuid.UUID]decimal.Decimal) ([]*Availability, error) {
	results := make([]*Availability, 0, len(requests))
	for productID, requested := range requests {
		availability, err := c.Check(ctx, tenantID, productID, requested)
		if err != nil {
			return nil, err
		}
		results = append(results, availability)
	}
	return results, nil
}
