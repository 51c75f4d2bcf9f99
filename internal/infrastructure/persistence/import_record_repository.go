package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormImportRecordRepository implements sales.ImportRecordRepository using GORM
type GormImportRecordRepository struct {
	db *gorm.DB
}

// NewGormImportRecordRepository creates a new import record repository
func NewGormImportRecordRepository(db *gorm.DB) *GormImportRecordRepository {
	return &GormImportRecordRepository{db: db}
}

// FindByID retrieves an import record by ID within the tenant
func (r *GormImportRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.ImportRecord, error) {
	var record sales.ImportRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find import record: %w", err)
	}
	if err := record.DecodeDetails(); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAll retrieves import records matching the filter, newest first
func (r *GormImportRecordRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*sales.ImportRecord, error) {
	var records []*sales.ImportRecord

	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	offset := (filter.Page - 1) * filter.PageSize
	if offset < 0 {
		offset = 0
	}
	if err := query.Offset(offset).Limit(filter.PageSize).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}

	for _, record := range records {
		if err := record.DecodeDetails(); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Count returns the number of import records matching the filter
func (r *GormImportRecordRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&sales.ImportRecord{}).Where("tenant_id = ?", tenantID)
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count import records: %w", err)
	}
	return count, nil
}

// Save persists an import record
func (r *GormImportRecordRepository) Save(ctx context.Context, record *sales.ImportRecord) error {
	if err := record.EncodeDetails(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save import record: %w", err)
	}
	return nil
}

func (r *GormImportRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	direction := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		direction = "ASC"
	}
	return query.Order("created_at " + direction)
}
