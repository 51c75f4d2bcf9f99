package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// maxOrderNumberAttempts bounds the retry loop when allocating an order
// number under concurrent creation.
const maxOrderNumberAttempts = 100

// GormSalesOrderRepository implements sales.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new sales order repository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID retrieves an order with its lines
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sales order: %w", err)
	}
	return &order, nil
}

// FindByOrderNumber retrieves an order by its business identifier
func (r *GormSalesOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sales order by number: %w", err)
	}
	return &order, nil
}

// FindAll retrieves orders matching the filter
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*sales.SalesOrder, error) {
	var orders []*sales.SalesOrder
	query := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter, true)

	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales orders: %w", err)
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *GormSalesOrderRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter, false)

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sales orders: %w", err)
	}
	return count, nil
}

// CountByStatus returns order counts grouped by status
func (r *GormSalesOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[sales.OrderStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count sales orders by status: %w", err)
	}

	counts := make(map[sales.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[sales.OrderStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// Save persists an order and its lines in a single transaction. Lines that
// were removed from the aggregate are deleted; remaining lines are upserted.
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *sales.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return fmt.Errorf("failed to save sales order: %w", err)
		}

		keptIDs := make([]uuid.UUID, 0, len(order.Lines))
		for i := range order.Lines {
			keptIDs = append(keptIDs, order.Lines[i].ID)
		}

		deleteQuery := tx.Where("order_id = ?", order.ID)
		if len(keptIDs) > 0 {
			deleteQuery = deleteQuery.Where("id NOT IN ?", keptIDs)
		}
		if err := deleteQuery.Delete(&sales.SalesOrderLine{}).Error; err != nil {
			return fmt.Errorf("failed to delete removed order lines: %w", err)
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return fmt.Errorf("failed to save order line: %w", err)
			}
		}
		return nil
	})
}

// Delete removes an order and its lines
func (r *GormSalesOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&sales.SalesOrderLine{}).Error; err != nil {
			return fmt.Errorf("failed to delete order lines: %w", err)
		}

		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&sales.SalesOrder{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete sales order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByOrderNumber reports whether an order number is taken within the tenant
func (r *GormSalesOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order number existence: %w", err)
	}
	return count > 0, nil
}

// NextOrderNumber allocates the next order number for the given date's year,
// formatted SO-YYYY-NNNNN. The sequence is scanned from the highest existing
// number for the year, so numbers of deleted orders are never reused. The
// existence probe only narrows the race window between concurrent callers;
// the (tenant_id, order_number) unique index is the real guard, and callers
// re-allocate when their insert reports ErrAlreadyExists.
func (r *GormSalesOrderRepository) NextOrderNumber(ctx context.Context, tenantID uuid.UUID, date time.Time) (string, error) {
	year := date.Year()
	prefix := fmt.Sprintf("SO-%d-", year)

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
		Select("order_number").
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Scan(&lastNumber).Error
	if err != nil {
		return "", fmt.Errorf("failed to scan order numbers: %w", err)
	}

	next := 1
	if lastNumber != "" {
		var seq int
		if _, err := fmt.Sscanf(strings.TrimPrefix(lastNumber, prefix), "%d", &seq); err == nil {
			next = seq + 1
		}
	}

	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%05d", prefix, next)
		exists, err := r.ExistsByOrderNumber(ctx, tenantID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		next++
	}
	return "", fmt.Errorf("failed to allocate order number after %d attempts", maxOrderNumberAttempts)
}

// applyFilter applies search, field filters, ordering and (optionally)
// pagination to a sales order query
func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_po ILIKE ?", search, search)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			query = query.Where("order_date >= ?", value)
		case "end_date":
			query = query.Where("order_date <= ?", value)
		}
	}

	orderBy := filter.OrderBy
	switch orderBy {
	case "order_number", "order_date", "total_amount", "status", "created_at", "updated_at":
	default:
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if paginate {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		pageSize := filter.PageSize
		if pageSize < 1 {
			pageSize = 20
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}

// isUniqueViolation reports whether err is a unique constraint violation,
// either from the postgres driver or GORM's translated error
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
