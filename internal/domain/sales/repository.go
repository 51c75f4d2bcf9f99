package sales

import (
	"context"
	"time"

	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderRepository defines the persistence operations for sales orders.
// All lookups are tenant-scoped; an order belonging to another tenant is
// indistinguishable from a missing one.
type SalesOrderRepository interface {
	// FindByID retrieves an order with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	// FindByOrderNumber retrieves an order by its business identifier
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*SalesOrder, error)

	// FindAll retrieves orders matching the filter, newest first by default
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*SalesOrder, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus returns order counts grouped by status
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[OrderStatus]int64, error)

	// Save persists an order and its lines, creating or updating as needed.
	// The aggregate version is checked for optimistic concurrency.
	Save(ctx context.Context, order *SalesOrder) error

	// Delete removes a draft order and its lines
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByOrderNumber reports whether an order number is already taken
	// within the tenant
	ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error)

	// NextOrderNumber allocates the next order number in the tenant's bucket
	// for the given date's year, formatted SO-YYYY-NNNNN. Each year starts a
	// fresh sequence at 1; numbers of deleted orders are never reused.
	NextOrderNumber(ctx context.Context, tenantID uuid.UUID, date time.Time) (string, error)
}

// ImportRecordRepository defines the persistence operations for the CSV
// import audit trail
type ImportRecordRepository interface {
	// FindByID retrieves a single import record
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ImportRecord, error)

	// FindAll retrieves import records matching the filter, newest first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*ImportRecord, error)

	// Count returns the number of import records matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save persists an import record
	Save(ctx context.Context, record *ImportRecord) error
}
