package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	// FindByID retrieves a product by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByCode retrieves a product by its business code within the tenant.
	// The lookup is case-insensitive on the code. Returns (nil, nil) when no
	// product carries the code.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// Save persists a product
	Save(ctx context.Context, product *Product) error
}
