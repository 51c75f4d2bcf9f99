package sales

import (
	"fmt"
	"time"

	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/fooderp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderLine represents a single product/quantity/price entry within an
// order. Line numbers are assigned monotonically and never reused: removing
// a line leaves a permanent gap.
type SalesOrderLine struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNumber        int       `gorm:"not null"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null"`
	QuantityOrdered   decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	QuantityAllocated decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	QuantityPicked    decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	QuantityPacked    decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	QuantityShipped   decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	UnitPrice         decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	DiscountType      *DiscountType   `gorm:"size:10"`
	DiscountValue     *decimal.Decimal `gorm:"type:numeric(14,4)"`
	LineTotal         decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	RequestedLot      *string          `gorm:"size:100"`
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (SalesOrderLine) TableName() string {
	return "sales_order_lines"
}

// NewSalesOrderLine creates a new order line with the given line number
func NewSalesOrderLine(orderID uuid.UUID, lineNumber int, productID uuid.UUID, quantity decimal.Decimal, unitPrice valueobject.Money) (*SalesOrderLine, error) {
	if lineNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_LINE_NUMBER", "Line number must be positive")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	line := &SalesOrderLine{
		ID:                uuid.New(),
		OrderID:           orderID,
		LineNumber:        lineNumber,
		ProductID:         productID,
		QuantityOrdered:   quantity,
		QuantityAllocated: decimal.Zero,
		QuantityPicked:    decimal.Zero,
		QuantityPacked:    decimal.Zero,
		QuantityShipped:   decimal.Zero,
		UnitPrice:         unitPrice.Amount(),
		LineTotal:         LineTotal(quantity, unitPrice.Amount()),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return line, nil
}

// UpdateQuantity updates the ordered quantity and recalculates the line total
func (l *SalesOrderLine) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	l.QuantityOrdered = quantity
	l.recalculate()
	return nil
}

// UpdateUnitPrice updates the unit price and recalculates the line total
func (l *SalesOrderLine) UpdateUnitPrice(unitPrice valueobject.Money) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	l.UnitPrice = unitPrice.Amount()
	l.recalculate()
	return nil
}

// ApplyDiscount sets a line-level discount and recalculates the line total
func (l *SalesOrderLine) ApplyDiscount(discountType DiscountType, value decimal.Decimal) error {
	if discountType != DiscountPercent && discountType != DiscountFixed {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount type must be 'percent' or 'fixed'")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}
	l.DiscountType = &discountType
	l.DiscountValue = &value
	l.recalculate()
	return nil
}

// SetNotes sets the free-text notes for the line
func (l *SalesOrderLine) SetNotes(notes *string) {
	l.Notes = notes
	l.UpdatedAt = time.Now()
}

// SetRequestedLot sets the requested lot for the line
func (l *SalesOrderLine) SetRequestedLot(lot *string) {
	l.RequestedLot = lot
	l.UpdatedAt = time.Now()
}

func (l *SalesOrderLine) recalculate() {
	l.LineTotal = LineTotalWithDiscount(l.QuantityOrdered, l.UnitPrice, l.DiscountType, l.DiscountValue)
	l.UpdatedAt = time.Now()
}

// NextLineNumber returns the next line number for an order: one greater than
// the highest number ever assigned, or 1 when no lines exist. Gaps left by
// deleted lines are never backfilled.
func NextLineNumber(lines []SalesOrderLine) int {
	next := 1
	for _, line := range lines {
		if line.LineNumber >= next {
			next = line.LineNumber + 1
		}
	}
	return next
}

// SalesOrder is the aggregate root for a customer sales order. It owns its
// lines and keeps TotalAmount and LineCount consistent with them on every
// mutation.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber          string    `gorm:"size:50;not null;index"`
	CustomerID           uuid.UUID `gorm:"type:uuid;not null;index"`
	ShippingAddressID    *uuid.UUID `gorm:"type:uuid"`
	Status               OrderStatus `gorm:"size:20;not null;index"`
	OrderDate            time.Time   `gorm:"type:date;not null"`
	RequiredDeliveryDate *time.Time  `gorm:"type:date"`
	PromisedShipDate     *time.Time  `gorm:"type:date"`
	CustomerPO           *string     `gorm:"size:100"`
	Notes                *string
	TotalAmount          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	LineCount            int             `gorm:"not null;default:0"`
	AllergenValidated    bool            `gorm:"not null;default:false"`
	ConfirmedAt          *time.Time
	ShippedAt            *time.Time
	Lines                []SalesOrderLine `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new sales order in draft status
func NewSalesOrder(tenantID uuid.UUID, orderNumber string, customerID uuid.UUID, orderDate time.Time) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		Status:              OrderStatusDraft,
		OrderDate:           orderDate,
		Lines:               make([]SalesOrderLine, 0),
		TotalAmount:         decimal.Zero,
	}, nil
}

// AddLine appends a new line to the order. Only allowed in draft status.
// The line number is assigned monotonically and never reused.
func (o *SalesOrder) AddLine(productID uuid.UUID, quantity decimal.Decimal, unitPrice valueobject.Money) (*SalesOrderLine, error) {
	if !o.Status.CanEdit() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft order")
	}

	line, err := NewSalesOrderLine(o.ID, NextLineNumber(o.Lines), productID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLineQuantity updates the ordered quantity of an existing line.
// Only allowed in draft status.
func (o *SalesOrder) UpdateLineQuantity(lineID uuid.UUID, quantity decimal.Decimal) error {
	if !o.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines in a non-draft order")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			if err := o.Lines[idx].UpdateQuantity(quantity); err != nil {
				return err
			}
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// UpdateLineUnitPrice updates the unit price of an existing line.
// Only allowed in draft status.
func (o *SalesOrder) UpdateLineUnitPrice(lineID uuid.UUID, unitPrice valueobject.Money) error {
	if !o.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines in a non-draft order")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			if err := o.Lines[idx].UpdateUnitPrice(unitPrice); err != nil {
				return err
			}
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// ApplyLineDiscount sets a discount on an existing line and recomputes the
// order total. Only allowed in draft status.
func (o *SalesOrder) ApplyLineDiscount(lineID uuid.UUID, discountType DiscountType, value decimal.Decimal) error {
	if !o.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines in a non-draft order")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			if err := o.Lines[idx].ApplyDiscount(discountType, value); err != nil {
				return err
			}
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// RemoveLine removes a line from the order, leaving a permanent gap in the
// line numbering. Only allowed in draft status.
func (o *SalesOrder) RemoveLine(lineID uuid.UUID) error {
	if !o.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft order")
	}

	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// GetLine returns a line by its ID
func (o *SalesOrder) GetLine(lineID uuid.UUID) *SalesOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// SetRequiredDeliveryDate sets the required delivery date after checking it
// does not precede the order date
func (o *SalesOrder) SetRequiredDeliveryDate(date *time.Time) error {
	if date != nil && !ValidateDates(o.OrderDate, *date) {
		return shared.NewDomainError("INVALID_DATE", "Required delivery date cannot be before order date")
	}
	o.RequiredDeliveryDate = date
	o.UpdatedAt = time.Now()
	return nil
}

// SetPromisedShipDate sets the promised ship date
func (o *SalesOrder) SetPromisedShipDate(date *time.Time) {
	o.PromisedShipDate = date
	o.UpdatedAt = time.Now()
}

// SetCustomerPO sets the customer purchase-order reference
func (o *SalesOrder) SetCustomerPO(po *string) {
	o.CustomerPO = po
	o.UpdatedAt = time.Now()
}

// SetShippingAddress sets the shipping address reference
func (o *SalesOrder) SetShippingAddress(addressID *uuid.UUID) {
	o.ShippingAddressID = addressID
	o.UpdatedAt = time.Now()
}

// SetNotes sets the free-text notes
func (o *SalesOrder) SetNotes(notes *string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// SetAllergenValidated records the outcome of the allergen-compliance check
// for the current content of the order
func (o *SalesOrder) SetAllergenValidated(validated bool) {
	o.AllergenValidated = validated
	o.UpdatedAt = time.Now()
}

// Confirm transitions the order from draft to confirmed. The caller is
// expected to have run ValidateForConfirmation first; Confirm re-checks and
// rejects incomplete orders.
func (o *SalesOrder) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if result := ValidateForConfirmation(o); !result.Valid {
		return shared.NewDomainError("VALIDATION_FAILED", result.Errors[0])
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// Ship marks the order as shipped
func (o *SalesOrder) Ship() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now
	return nil
}

// Deliver marks the order as delivered (terminal)
func (o *SalesOrder) Deliver() error {
	if !o.Status.CanTransitionTo(OrderStatusDelivered) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot deliver order in %s status", o.Status))
	}

	o.Status = OrderStatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels the order. Allowed only from draft or confirmed status.
// The reason is appended to the order notes as an audit note.
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	note := fmt.Sprintf("[CANCELLED - %s] %s", now.Format(time.RFC3339), reason)
	if o.Notes != nil && *o.Notes != "" {
		note = *o.Notes + "\n" + note
	}
	o.Notes = &note
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now
	return nil
}

// CanModify returns true if the order content may still be edited
func (o *SalesOrder) CanModify() bool {
	return o.Status.CanEdit()
}

// IsDraft returns true if the order is in draft status
func (o *SalesOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// recalculateTotals keeps the cached totals consistent with the lines:
// TotalAmount is always the sum of per-line totals and LineCount the number
// of lines.
func (o *SalesOrder) recalculateTotals() {
	o.TotalAmount = OrderTotal(o.Lines)
	o.LineCount = len(o.Lines)
}
