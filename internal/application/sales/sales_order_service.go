package sales

import (
	"context"
	"errors"
	"time"

	"github.com/fooderp/backend/internal/domain/catalog"
	"github.com/fooderp/backend/internal/domain/inventory"
	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/fooderp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrSalesOrderNotFound is returned for lookups of missing or foreign-tenant
// orders
var ErrSalesOrderNotFound = shared.NewDomainError("NOT_FOUND", "Sales order not found")

// maxOrderNumberRetries bounds how often a save is retried when a concurrent
// caller claims the same order number first.
const maxOrderNumberRetries = 3

// saveNewOrder persists a freshly built order. Order numbers are allocated
// optimistically, so the insert can hit the (tenant_id, order_number) unique
// index when a concurrent request in the same tenant and year wins the same
// number; the order is then given a fresh number and saved again.
func saveNewOrder(ctx context.Context, repo sales.SalesOrderRepository, order *sales.SalesOrder, orderDate time.Time) error {
	var err error
	for attempt := 0; attempt <= maxOrderNumberRetries; attempt++ {
		err = repo.Save(ctx, order)
		if err == nil || !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		number, numErr := repo.NextOrderNumber(ctx, order.TenantID, orderDate)
		if numErr != nil {
			return numErr
		}
		order.OrderNumber = number
	}
	return err
}

// SalesOrderService handles sales order business operations
type SalesOrderService struct {
	orderRepo    sales.SalesOrderRepository
	productRepo  catalog.ProductRepository
	availability *inventory.AvailabilityChecker
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(
	orderRepo sales.SalesOrderRepository,
	productRepo catalog.ProductRepository,
	availability *inventory.AvailabilityChecker,
) *SalesOrderService {
	return &SalesOrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		availability: availability,
	}
}

// Create creates a new draft sales order with a generated order number
func (s *SalesOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, tenantID, orderDate)
	if err != nil {
		return nil, err
	}

	order, err := sales.NewSalesOrder(tenantID, orderNumber, req.CustomerID, orderDate)
	if err != nil {
		return nil, err
	}

	order.SetShippingAddress(req.ShippingAddressID)
	order.SetCustomerPO(req.CustomerPO)
	order.SetNotes(req.Notes)
	order.SetPromisedShipDate(req.PromisedShipDate)
	if err := order.SetRequiredDeliveryDate(req.RequiredDeliveryDate); err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		if err := s.addLine(ctx, order, input.ProductID, input.Quantity, input.UnitPrice, input.DiscountType, input.DiscountValue, input.RequestedLot, input.Notes); err != nil {
			return nil, err
		}
	}

	if err := saveNewOrder(ctx, s.orderRepo, order, orderDate); err != nil {
		return nil, err
	}

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// addLine appends a line, falling back to the product's standard price when
// no unit price is given
func (s *SalesOrderService) addLine(
	ctx context.Context,
	order *sales.SalesOrder,
	productID uuid.UUID,
	quantity decimal.Decimal,
	unitPrice *decimal.Decimal,
	discountType *sales.DiscountType,
	discountValue *decimal.Decimal,
	requestedLot *string,
	notes *string,
) error {
	price := unitPrice
	if price == nil {
		product, err := s.productRepo.FindByID(ctx, order.TenantID, productID)
		if err != nil {
			return err
		}
		price = &product.StandardPrice
	}

	line, err := order.AddLine(productID, quantity, valueobject.NewMoneyUSD(*price))
	if err != nil {
		return err
	}
	if discountType != nil && discountValue != nil {
		if err := order.ApplyLineDiscount(line.ID, *discountType, *discountValue); err != nil {
			return err
		}
	}
	line.SetRequestedLot(requestedLot)
	line.SetNotes(notes)
	return nil
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves a sales order by its business identifier
func (s *SalesOrderService) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// List retrieves sales orders with filtering and pagination
func (s *SalesOrderService) List(ctx context.Context, tenantID uuid.UUID, filter SalesOrderListFilter) ([]SalesOrderListItemResponse, int64, error) {
	domainFilter := shared.NewFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]SalesOrderListItemResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, ToSalesOrderListItemResponse(order))
	}
	return items, total, nil
}

// StatusCounts returns order counts grouped by status
func (s *SalesOrderService) StatusCounts(ctx context.Context, tenantID uuid.UUID) (StatusCountsResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := make(StatusCountsResponse, len(counts))
	for status, count := range counts {
		response[status.String()] = count
	}
	return response, nil
}

// Update updates header fields of a draft order
func (s *SalesOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateSalesOrderRequest) (*SalesOrderResponse, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft orders can be updated")
	}

	if req.ShippingAddressID != nil {
		order.SetShippingAddress(req.ShippingAddressID)
	}
	if req.RequiredDeliveryDate != nil {
		if err := order.SetRequiredDeliveryDate(req.RequiredDeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.PromisedShipDate != nil {
		order.SetPromisedShipDate(req.PromisedShipDate)
	}
	if req.CustomerPO != nil {
		order.SetCustomerPO(req.CustomerPO)
	}
	if req.Notes != nil {
		order.SetNotes(req.Notes)
	}

	order.IncrementVersion()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// AddLine adds a line to a draft order
func (s *SalesOrderService) AddLine(ctx context.Context, tenantID, orderID uuid.UUID, req AddSalesOrderLineRequest) (*SalesOrderResponse, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.addLine(ctx, order, req.ProductID, req.Quantity, req.UnitPrice, req.DiscountType, req.DiscountValue, req.RequestedLot, req.Notes); err != nil {
		return nil, err
	}

	order.IncrementVersion()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// UpdateLine updates quantity or unit price of a line on a draft order
func (s *SalesOrderService) UpdateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req UpdateSalesOrderLineRequest) (*SalesOrderResponse, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if err := order.UpdateLineQuantity(lineID, *req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != nil {
		if err := order.UpdateLineUnitPrice(lineID, valueobject.NewMoneyUSD(*req.UnitPrice)); err != nil {
			return nil, err
		}
	}

	order.IncrementVersion()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// RemoveLine removes a line from a draft order. The line number is retired
// with it.
func (s *SalesOrderService) RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.RemoveLine(lineID); err != nil {
		return nil, err
	}

	order.IncrementVersion()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// Confirm validates a draft order and, when valid, transitions it to
// confirmed. Validation failures come back as data, not as an error.
// Stock availability is checked per line but never blocks the confirmation.
func (s *SalesOrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*ConfirmSalesOrderResult, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	validation := sales.ValidateForConfirmation(order)
	if !validation.Valid {
		return &ConfirmSalesOrderResult{Validation: validation}, nil
	}

	var availability []*inventory.Availability
	if s.availability != nil {
		requests := make(map[uuid.UUID]decimal.Decimal, len(order.Lines))
		for _, line := range order.Lines {
			requests[line.ProductID] = requests[line.ProductID].Add(line.QuantityOrdered)
		}
		availability, err = s.availability.CheckMany(ctx, tenantID, requests)
		if err != nil {
			return nil, err
		}
	}

	if err := order.Confirm(); err != nil {
		return nil, err
	}

	order.IncrementVersion()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToSalesOrderResponse(order)
	return &ConfirmSalesOrderResult{
		Order:        &response,
		Validation:   validation,
		Availability: availability,
	}, nil
}

// Ship marks a confirmed order as shipped
func (s *SalesOrderService) Ship(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *sales.SalesOrder) error {
		return order.Ship()
	})
}

// Deliver marks a shipped order as delivered
func (s *SalesOrderService) Deliver(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *sales.SalesOrder) error {
		return order.Deliver()
	})
}

// Cancel cancels a draft or confirmed order, recording the reason
func (s *SalesOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelSalesOrderRequest) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *sales.SalesOrder) error {
		return order.Cancel(req.Reason)
	})
}

// Delete removes a draft order permanently
func (s *SalesOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be deleted")
	}
	return s.orderRepo.Delete(ctx, tenantID, orderID)
}

// Clone creates a new draft order from an existing one. The clone gets a
// fresh order number and today's date unless another date is given.
func (s *SalesOrderService) Clone(ctx context.Context, tenantID, orderID uuid.UUID, req CloneSalesOrderRequest) (*SalesOrderResponse, error) {
	src, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, tenantID, orderDate)
	if err != nil {
		return nil, err
	}

	clone, err := sales.Clone(src, orderNumber, orderDate)
	if err != nil {
		return nil, err
	}

	if err := saveNewOrder(ctx, s.orderRepo, clone, orderDate); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(clone)
	return &response, nil
}

func (s *SalesOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, fn func(*sales.SalesOrder) error) (*SalesOrderResponse, error) {
	order, err := s.loadOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}

	order.IncrementVersion()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

func (s *SalesOrderService) loadOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*sales.SalesOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return order, nil
}

func (s *SalesOrderService) mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return ErrSalesOrderNotFound
	}
	return err
}
