package inventory

import (
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel tracks the quantity of a product currently on hand for a
// tenant. Fulfillment systems maintain it; the sales side only reads it.
type StockLevel struct {
	shared.TenantAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_tenant_product,priority:2"`
	QuantityOnHand   decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	QuantityReserved decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates an empty stock record for a product
func NewStockLevel(tenantID, productID uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		QuantityOnHand:      decimal.Zero,
		QuantityReserved:    decimal.Zero,
	}, nil
}

// Available returns the quantity free for new orders
func (s *StockLevel) Available() decimal.Decimal {
	return s.QuantityOnHand.Sub(s.QuantityReserved)
}
