package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	// FindByID retrieves a customer by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByCode retrieves a customer by its business code within the tenant.
	// The lookup is case-insensitive on the code. Returns (nil, nil) when no
	// customer carries the code.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Customer, error)

	// Save persists a customer
	Save(ctx context.Context, customer *Customer) error
}
