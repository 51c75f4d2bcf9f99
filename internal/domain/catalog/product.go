package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

var productCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-_.]{0,49}$`)

// Product is a sellable item. StandardPrice is the list price used when an
// order line or CSV row does not supply one.
type Product struct {
	shared.TenantAggregateRoot
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	UnitOfMeasure string          `gorm:"type:varchar(20);not null;default:'each'"`
	StandardPrice decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	Allergens     string          `gorm:"type:text"` // Comma-separated allergen declarations
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, code, name string, standardPrice decimal.Decimal) (*Product, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !productCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code must be 1-50 uppercase letters, digits, hyphens, underscores or dots")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if standardPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Standard price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Status:              ProductStatusActive,
		UnitOfMeasure:       "each",
		StandardPrice:       standardPrice,
	}, nil
}

// IsActive reports whether the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// UpdateStandardPrice changes the list price
func (p *Product) UpdateStandardPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Standard price cannot be negative")
	}
	p.StandardPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Discontinue marks the product as no longer sellable
func (p *Product) Discontinue() {
	p.Status = ProductStatusDiscontinued
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
