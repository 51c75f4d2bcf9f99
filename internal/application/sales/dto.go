package sales

import (
	"time"

	"github.com/fooderp/backend/internal/domain/inventory"
	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents a request to create a sales order
type CreateSalesOrderRequest struct {
	CustomerID           uuid.UUID                   `json:"customer_id" binding:"required"`
	ShippingAddressID    *uuid.UUID                  `json:"shipping_address_id"`
	OrderDate            *time.Time                  `json:"order_date"` // Defaults to today
	RequiredDeliveryDate *time.Time                  `json:"required_delivery_date"`
	PromisedShipDate     *time.Time                  `json:"promised_ship_date"`
	CustomerPO           *string                     `json:"customer_po"`
	Notes                *string                     `json:"notes"`
	Lines                []CreateSalesOrderLineInput `json:"lines"`
}

// CreateSalesOrderLineInput represents a line in the create order request.
// When UnitPrice is nil the product's standard price is used.
type CreateSalesOrderLineInput struct {
	ProductID     uuid.UUID           `json:"product_id" binding:"required"`
	Quantity      decimal.Decimal     `json:"quantity" binding:"required"`
	UnitPrice     *decimal.Decimal    `json:"unit_price"`
	DiscountType  *sales.DiscountType `json:"discount_type" binding:"omitempty,oneof=percent fixed"`
	DiscountValue *decimal.Decimal    `json:"discount_value"`
	RequestedLot  *string             `json:"requested_lot"`
	Notes         *string             `json:"notes"`
}

// UpdateSalesOrderRequest updates header fields of a draft order.
// Nil fields are left unchanged.
type UpdateSalesOrderRequest struct {
	ShippingAddressID    *uuid.UUID `json:"shipping_address_id"`
	RequiredDeliveryDate *time.Time `json:"required_delivery_date"`
	PromisedShipDate     *time.Time `json:"promised_ship_date"`
	CustomerPO           *string    `json:"customer_po"`
	Notes                *string    `json:"notes"`
}

// AddSalesOrderLineRequest adds a line to a draft order
type AddSalesOrderLineRequest struct {
	ProductID     uuid.UUID           `json:"product_id" binding:"required"`
	Quantity      decimal.Decimal     `json:"quantity" binding:"required"`
	UnitPrice     *decimal.Decimal    `json:"unit_price"`
	DiscountType  *sales.DiscountType `json:"discount_type" binding:"omitempty,oneof=percent fixed"`
	DiscountValue *decimal.Decimal    `json:"discount_value"`
	RequestedLot  *string             `json:"requested_lot"`
	Notes         *string             `json:"notes"`
}

// UpdateSalesOrderLineRequest updates a line on a draft order.
// Nil fields are left unchanged.
type UpdateSalesOrderLineRequest struct {
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CancelSalesOrderRequest cancels an order with a mandatory reason
type CancelSalesOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CloneSalesOrderRequest creates a new draft order from an existing one.
// OrderDate defaults to today.
type CloneSalesOrderRequest struct {
	OrderDate *time.Time `json:"order_date"`
}

// SalesOrderListFilter represents filter options for the order list
type SalesOrderListFilter struct {
	Search     string             `form:"search"`
	CustomerID *uuid.UUID         `form:"customer_id"`
	Status     *sales.OrderStatus `form:"status"`
	StartDate  *time.Time         `form:"start_date"`
	EndDate    *time.Time         `form:"end_date"`
	Page       int                `form:"page" binding:"omitempty,min=1"`
	PageSize   int                `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string             `form:"order_by"`
	OrderDir   string             `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SalesOrderLineResponse represents an order line in API responses
type SalesOrderLineResponse struct {
	ID                uuid.UUID           `json:"id"`
	LineNumber        int                 `json:"line_number"`
	ProductID         uuid.UUID           `json:"product_id"`
	QuantityOrdered   decimal.Decimal     `json:"quantity_ordered"`
	QuantityAllocated decimal.Decimal     `json:"quantity_allocated"`
	QuantityPicked    decimal.Decimal     `json:"quantity_picked"`
	QuantityPacked    decimal.Decimal     `json:"quantity_packed"`
	QuantityShipped   decimal.Decimal     `json:"quantity_shipped"`
	UnitPrice         decimal.Decimal     `json:"unit_price"`
	DiscountType      *sales.DiscountType `json:"discount_type,omitempty"`
	DiscountValue     *decimal.Decimal    `json:"discount_value,omitempty"`
	LineTotal         decimal.Decimal     `json:"line_total"`
	RequestedLot      *string             `json:"requested_lot,omitempty"`
	Notes             *string             `json:"notes,omitempty"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID                   uuid.UUID                `json:"id"`
	TenantID             uuid.UUID                `json:"tenant_id"`
	OrderNumber          string                   `json:"order_number"`
	CustomerID           uuid.UUID                `json:"customer_id"`
	ShippingAddressID    *uuid.UUID               `json:"shipping_address_id,omitempty"`
	Status               string                   `json:"status"`
	OrderDate            time.Time                `json:"order_date"`
	RequiredDeliveryDate *time.Time               `json:"required_delivery_date,omitempty"`
	PromisedShipDate     *time.Time               `json:"promised_ship_date,omitempty"`
	CustomerPO           *string                  `json:"customer_po,omitempty"`
	Notes                *string                  `json:"notes,omitempty"`
	TotalAmount          decimal.Decimal          `json:"total_amount"`
	LineCount            int                      `json:"line_count"`
	AllergenValidated    bool                     `json:"allergen_validated"`
	ConfirmedAt          *time.Time               `json:"confirmed_at,omitempty"`
	ShippedAt            *time.Time               `json:"shipped_at,omitempty"`
	Lines                []SalesOrderLineResponse `json:"lines"`
	Version              int                      `json:"version"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

// SalesOrderListItemResponse is the compact list representation
type SalesOrderListItemResponse struct {
	ID                   uuid.UUID       `json:"id"`
	OrderNumber          string          `json:"order_number"`
	CustomerID           uuid.UUID       `json:"customer_id"`
	Status               string          `json:"status"`
	OrderDate            time.Time       `json:"order_date"`
	RequiredDeliveryDate *time.Time      `json:"required_delivery_date,omitempty"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	LineCount            int             `json:"line_count"`
	AllergenValidated    bool            `json:"allergen_validated"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ConfirmSalesOrderResult carries the outcome of a confirmation attempt.
// When Validation.Valid is false the order was left untouched and Order is
// nil; availability warnings never block confirmation.
type ConfirmSalesOrderResult struct {
	Order        *SalesOrderResponse     `json:"order,omitempty"`
	Validation   *sales.ValidationResult `json:"validation"`
	Availability []*inventory.Availability `json:"availability,omitempty"`
}

// StatusCountsResponse reports order counts per status
type StatusCountsResponse map[string]int64

// ==================== CSV Import DTOs ====================

// ImportError describes why a CSV row was rejected
type ImportError struct {
	Row          int    `json:"row"`
	CustomerCode string `json:"customer_code,omitempty"`
	ProductCode  string `json:"product_code,omitempty"`
	Error        string `json:"error"`
}

// ValidatedRow is a CSV row after parsing, validation and reference
// resolution. Invalid rows keep their raw values so the caller can show
// what was rejected.
type ValidatedRow struct {
	RowNumber            int             `json:"row_number"`
	Valid                bool            `json:"valid"`
	Error                string          `json:"error,omitempty"`
	CustomerCode         string          `json:"customer_code"`
	ProductCode          string          `json:"product_code"`
	Quantity             decimal.Decimal `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	CustomerPO           *string         `json:"customer_po,omitempty"`
	PromisedShipDate     *string         `json:"promised_ship_date,omitempty"`
	RequiredDeliveryDate *string         `json:"required_delivery_date,omitempty"`
	Notes                *string         `json:"notes,omitempty"`

	// Resolved references, set only on valid rows
	CustomerID        *uuid.UUID `json:"resolved_customer_id,omitempty"`
	ProductID         *uuid.UUID `json:"resolved_product_id,omitempty"`
	ShippingAddressID *uuid.UUID `json:"resolved_shipping_address_id,omitempty"`
}

// ImportDefaults are the values applied to every imported order
type ImportDefaults struct {
	Status            string `json:"status"`
	AllergenValidated bool   `json:"allergen_validated"`
	OrderDate         string `json:"order_date"`
}

// ImportPreviewResult is the outcome of parsing and validating a CSV file.
// One order is created per customer group; rows that failed validation are
// reported but never block the valid ones.
type ImportPreviewResult struct {
	Rows           []ValidatedRow            `json:"validated_rows"`
	CustomerGroups map[string][]ValidatedRow `json:"customer_groups"`
	OrdersToCreate int                       `json:"orders_to_create"`
	LinesToCreate  int                       `json:"lines_to_create"`
	ValidCount     int                       `json:"valid_count"`
	InvalidCount   int                       `json:"invalid_count"`
	Errors         []ImportError             `json:"errors"`
	Defaults       ImportDefaults            `json:"default_values"`
}

// FailedImportGroup reports a customer group whose order could not be saved
type FailedImportGroup struct {
	CustomerCode string `json:"customer_code"`
	Error        string `json:"error"`
}

// CreateImportedOrdersResult is the outcome of turning a validated import
// into persisted draft orders. Groups fail independently.
type CreateImportedOrdersResult struct {
	CreatedOrders  []SalesOrderResponse `json:"created_orders"`
	FailedGroups   []FailedImportGroup  `json:"failed_groups"`
	ImportRecordID *uuid.UUID           `json:"import_record_id,omitempty"`
}

// ImportRecordResponse is the API view of one import audit record
type ImportRecordResponse struct {
	ID            uuid.UUID             `json:"id"`
	TotalRows     int                   `json:"total_rows"`
	ValidRows     int                   `json:"valid_rows"`
	InvalidRows   int                   `json:"invalid_rows"`
	OrdersCreated int                   `json:"orders_created"`
	OrdersFailed  int                   `json:"orders_failed"`
	Status        string                `json:"status"`
	OrderNumbers  []string              `json:"order_numbers"`
	Failures      []sales.ImportFailure `json:"failures,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
}

// ==================== Mappers ====================

// ToSalesOrderLineResponse converts a domain line to its response form
func ToSalesOrderLineResponse(line *sales.SalesOrderLine) SalesOrderLineResponse {
	return SalesOrderLineResponse{
		ID:                line.ID,
		LineNumber:        line.LineNumber,
		ProductID:         line.ProductID,
		QuantityOrdered:   line.QuantityOrdered,
		QuantityAllocated: line.QuantityAllocated,
		QuantityPicked:    line.QuantityPicked,
		QuantityPacked:    line.QuantityPacked,
		QuantityShipped:   line.QuantityShipped,
		UnitPrice:         line.UnitPrice,
		DiscountType:      line.DiscountType,
		DiscountValue:     line.DiscountValue,
		LineTotal:         line.LineTotal,
		RequestedLot:      line.RequestedLot,
		Notes:             line.Notes,
	}
}

// ToSalesOrderResponse converts a domain order to its response form
func ToSalesOrderResponse(order *sales.SalesOrder) SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, 0, len(order.Lines))
	for i := range order.Lines {
		lines = append(lines, ToSalesOrderLineResponse(&order.Lines[i]))
	}

	return SalesOrderResponse{
		ID:                   order.ID,
		TenantID:             order.TenantID,
		OrderNumber:          order.OrderNumber,
		CustomerID:           order.CustomerID,
		ShippingAddressID:    order.ShippingAddressID,
		Status:               order.Status.String(),
		OrderDate:            order.OrderDate,
		RequiredDeliveryDate: order.RequiredDeliveryDate,
		PromisedShipDate:     order.PromisedShipDate,
		CustomerPO:           order.CustomerPO,
		Notes:                order.Notes,
		TotalAmount:          order.TotalAmount,
		LineCount:            order.LineCount,
		AllergenValidated:    order.AllergenValidated,
		ConfirmedAt:          order.ConfirmedAt,
		ShippedAt:            order.ShippedAt,
		Lines:                lines,
		Version:              order.Version,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}

// ToSalesOrderListItemResponse converts a domain order to its list form
func ToSalesOrderListItemResponse(order *sales.SalesOrder) SalesOrderListItemResponse {
	return SalesOrderListItemResponse{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		CustomerID:           order.CustomerID,
		Status:               order.Status.String(),
		OrderDate:            order.OrderDate,
		RequiredDeliveryDate: order.RequiredDeliveryDate,
		TotalAmount:          order.TotalAmount,
		LineCount:            order.LineCount,
		AllergenValidated:    order.AllergenValidated,
		CreatedAt:            order.CreatedAt,
	}
}

// ToImportRecordResponse converts an import audit record to its API form
func ToImportRecordResponse(record *sales.ImportRecord) ImportRecordResponse {
	return ImportRecordResponse{
		ID:            record.ID,
		TotalRows:     record.TotalRows,
		ValidRows:     record.ValidRows,
		InvalidRows:   record.InvalidRows,
		OrdersCreated: record.OrdersCreated,
		OrdersFailed:  record.OrdersFailed,
		Status:        string(record.Status),
		OrderNumbers:  record.OrderNumbers,
		Failures:      record.Failures,
		CreatedAt:     record.CreatedAt,
		CompletedAt:   record.CompletedAt,
	}
}
