package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockLevelRepository defines read access to stock levels. Returning a nil
// StockLevel with a nil error means no stock record exists for the product.
type StockLevelRepository interface {
	// FindByProduct retrieves the stock level for a product within the tenant
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*StockLevel, error)

	// Save persists a stock level
	Save(ctx context.Context, level *StockLevel) error
}
