package sales

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ImportStatus represents the outcome of a CSV order import
type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusCompleted, ImportStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ImportFailure reports a customer group whose order could not be saved
type ImportFailure struct {
	CustomerCode string `json:"customer_code"`
	Error        string `json:"error"`
}

// ImportRecord is the audit trail of one CSV order import. A record is
// created when a validated preview is committed and finalized in the same
// request; it keeps the row counts from the preview and the order numbers
// actually created so an import can be traced back later.
type ImportRecord struct {
	shared.TenantAggregateRoot
	TotalRows     int          `json:"total_rows" gorm:"not null"`
	ValidRows     int          `json:"valid_rows" gorm:"not null"`
	InvalidRows   int          `json:"invalid_rows" gorm:"not null"`
	OrdersCreated int          `json:"orders_created" gorm:"not null"`
	OrdersFailed  int          `json:"orders_failed" gorm:"not null"`
	Status        ImportStatus `json:"status" gorm:"type:varchar(20);not null;index"`

	OrderNumbers    []string `json:"order_numbers" gorm:"-"`
	OrderNumbersRaw string   `json:"-" gorm:"column:order_numbers;type:text"`

	Failures    []ImportFailure `json:"failures,omitempty" gorm:"-"`
	FailuresRaw string          `json:"-" gorm:"column:failures;type:text"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName overrides the table name for GORM
func (ImportRecord) TableName() string {
	return "sales_order_imports"
}

// NewImportRecord creates a pending record from the preview's row counts
func NewImportRecord(tenantID uuid.UUID, totalRows, validRows, invalidRows int) (*ImportRecord, error) {
	if totalRows < 0 || validRows < 0 || invalidRows < 0 {
		return nil, shared.NewDomainError("INVALID_ROW_COUNT", "Row counts cannot be negative")
	}
	if validRows+invalidRows > totalRows {
		totalRows = validRows + invalidRows
	}
	return &ImportRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TotalRows:           totalRows,
		ValidRows:           validRows,
		InvalidRows:         invalidRows,
		Status:              ImportStatusPending,
		OrderNumbers:        make([]string, 0),
		Failures:            make([]ImportFailure, 0),
	}, nil
}

// Complete finalizes the record with what the commit actually produced.
// The status is failed only when nothing was created at all; partial
// failures still count as completed because the created orders stand.
func (r *ImportRecord) Complete(orderNumbers []string, failures []ImportFailure) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete import from state: %s", r.Status))
	}

	status := ImportStatusCompleted
	if len(orderNumbers) == 0 && len(failures) > 0 {
		status = ImportStatusFailed
	}

	r.Status = status
	r.OrdersCreated = len(orderNumbers)
	r.OrdersFailed = len(failures)
	r.OrderNumbers = orderNumbers
	r.Failures = failures
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// HasFailures returns true if any customer group could not be saved
func (r *ImportRecord) HasFailures() bool {
	return r.OrdersFailed > 0
}

// SuccessRate returns the share of preview rows that ended up on a created
// order, as a percentage (0-100)
func (r *ImportRecord) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.ValidRows) / float64(r.TotalRows) * 100
}

// EncodeDetails serializes the order numbers and failures into their raw
// columns before persisting
func (r *ImportRecord) EncodeDetails() error {
	numbers, err := json.Marshal(r.OrderNumbers)
	if err != nil {
		return fmt.Errorf("failed to marshal order numbers: %w", err)
	}
	r.OrderNumbersRaw = string(numbers)

	if len(r.Failures) == 0 {
		r.FailuresRaw = "[]"
		return nil
	}
	failures, err := json.Marshal(r.Failures)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}
	r.FailuresRaw = string(failures)
	return nil
}

// DecodeDetails restores the order numbers and failures from their raw
// columns after loading
func (r *ImportRecord) DecodeDetails() error {
	r.OrderNumbers = make([]string, 0)
	if r.OrderNumbersRaw != "" {
		if err := json.Unmarshal([]byte(r.OrderNumbersRaw), &r.OrderNumbers); err != nil {
			return fmt.Errorf("failed to unmarshal order numbers: %w", err)
		}
	}

	r.Failures = make([]ImportFailure, 0)
	if r.FailuresRaw != "" && r.FailuresRaw != "[]" {
		if err := json.Unmarshal([]byte(r.FailuresRaw), &r.Failures); err != nil {
			return fmt.Errorf("failed to unmarshal failures: %w", err)
		}
	}
	return nil
}
