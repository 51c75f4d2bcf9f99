package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusOnHold   CustomerStatus = "on_hold" // Credit or compliance hold
)

var customerCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-_]{0,49}$`)

// Customer represents a buying party. Orders reference customers by ID; CSV
// import resolves the customer code to an ID within the tenant.
type Customer struct {
	shared.TenantAggregateRoot
	Code                     string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name                     string         `gorm:"type:varchar(200);not null"`
	Status                   CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName              string         `gorm:"type:varchar(100)"`
	Phone                    string         `gorm:"type:varchar(50)"`
	Email                    string         `gorm:"type:varchar(200);index"`
	DefaultShippingAddressID *uuid.UUID     `gorm:"type:uuid"`
	PaymentTerms             string         `gorm:"type:varchar(50)"`
	Notes                    string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !customerCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code must be 1-50 uppercase letters, digits, hyphens or underscores")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Status:              CustomerStatusActive,
	}, nil
}

// IsActive reports whether the customer can place new orders
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// SetDefaultShippingAddress sets the address used when orders do not name one
func (c *Customer) SetDefaultShippingAddress(addressID *uuid.UUID) {
	c.DefaultShippingAddressID = addressID
	c.UpdatedAt = time.Now()
}

// Deactivate marks the customer inactive
func (c *Customer) Deactivate() {
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
