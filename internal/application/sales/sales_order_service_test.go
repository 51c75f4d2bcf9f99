package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/fooderp/backend/internal/domain/sales"
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/fooderp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(orderRepo *MockSalesOrderRepository, productRepo *MockProductRepository) *SalesOrderService {
	return NewSalesOrderService(orderRepo, productRepo, nil)
}

func draftOrder(t *testing.T, tenantID uuid.UUID) *domain.SalesOrder {
	order, err := domain.NewSalesOrder(tenantID, "SO-2026-00001", uuid.New(), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return order
}

func draftOrderWithLine(t *testing.T, tenantID uuid.UUID) *domain.SalesOrder {
	order := draftOrder(t, tenantID)
	_, err := order.AddLine(uuid.New(), decimal.NewFromInt(10), valueobject.NewMoneyUSDFromFloat(2.50))
	require.NoError(t, err)
	return order
}

func TestSalesOrderService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	customerID := uuid.New()
	productID := uuid.New()

	t.Run("creates order with explicit prices", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		productRepo := new(MockProductRepository)
		orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00007", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(nil)

		svc := newTestService(orderRepo, productRepo)
		price := decimal.NewFromFloat(2.50)
		resp, err := svc.Create(ctx, tenantID, CreateSalesOrderRequest{
			CustomerID: customerID,
			Lines: []CreateSalesOrderLineInput{
				{ProductID: productID, Quantity: decimal.NewFromInt(10), UnitPrice: &price},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "SO-2026-00007", resp.OrderNumber)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, 1, resp.LineCount)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(25)))
		assert.False(t, resp.AllergenValidated)
		productRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("falls back to standard price when none given", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		productRepo := new(MockProductRepository)
		orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00008", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(nil)

		product := productWithPrice(t, tenantID, "BREAD-01", "4.75")
		product.ID = productID
		productRepo.On("FindByID", ctx, tenantID, productID).Return(product, nil)

		svc := newTestService(orderRepo, productRepo)
		resp, err := svc.Create(ctx, tenantID, CreateSalesOrderRequest{
			CustomerID: customerID,
			Lines: []CreateSalesOrderLineInput{
				{ProductID: productID, Quantity: decimal.NewFromInt(2)},
			},
		})

		require.NoError(t, err)
		assert.True(t, resp.Lines[0].UnitPrice.Equal(decimal.RequireFromString("4.75")))
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("9.5")))
	})

	t.Run("retries with a fresh number when a concurrent writer wins the first", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00009", nil).Once()
		orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(shared.ErrAlreadyExists).Once()
		orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00010", nil).Once()
		orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(nil).Once()

		svc := newTestService(orderRepo, new(MockProductRepository))
		price := decimal.NewFromFloat(2.50)
		resp, err := svc.Create(ctx, tenantID, CreateSalesOrderRequest{
			CustomerID: customerID,
			Lines: []CreateSalesOrderLineInput{
				{ProductID: productID, Quantity: decimal.NewFromInt(1), UnitPrice: &price},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "SO-2026-00010", resp.OrderNumber)
		orderRepo.AssertExpectations(t)
	})

	t.Run("gives up after repeated number conflicts", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00011", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(shared.ErrAlreadyExists)

		svc := newTestService(orderRepo, new(MockProductRepository))
		_, err := svc.Create(ctx, tenantID, CreateSalesOrderRequest{CustomerID: customerID})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("propagates order number generation failure", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("", errors.New("sequence unavailable"))

		svc := newTestService(orderRepo, new(MockProductRepository))
		_, err := svc.Create(ctx, tenantID, CreateSalesOrderRequest{CustomerID: customerID})
		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "Save")
	})
}

func TestSalesOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("maps missing order to sales order not found", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		orderID := uuid.New()
		orderRepo.On("FindByID", ctx, tenantID, orderID).Return(nil, shared.ErrNotFound)

		svc := newTestService(orderRepo, new(MockProductRepository))
		_, err := svc.GetByID(ctx, tenantID, orderID)
		require.Error(t, err)
		assert.Equal(t, "Sales order not found", err.Error())
	})

	t.Run("returns order with lines", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		resp, err := svc.GetByID(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, resp.OrderNumber)
		assert.Len(t, resp.Lines, 1)
	})
}

func TestSalesOrderService_Confirm(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("returns validation failures without error and does not save", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrder(t, tenantID) // no lines
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		result, err := svc.Confirm(ctx, tenantID, order.ID)

		require.NoError(t, err)
		assert.Nil(t, result.Order)
		assert.False(t, result.Validation.Valid)
		assert.Contains(t, result.Validation.Errors, "At least one line is required")
		orderRepo.AssertNotCalled(t, "Save")
	})

	t.Run("confirms a valid order", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)
		orderRepo.On("Save", ctx, order).Return(nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		result, err := svc.Confirm(ctx, tenantID, order.ID)

		require.NoError(t, err)
		require.NotNil(t, result.Order)
		assert.True(t, result.Validation.Valid)
		assert.Equal(t, "confirmed", result.Order.Status)
		orderRepo.AssertCalled(t, "Save", ctx, order)
	})

	t.Run("rejects confirm on a confirmed order", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		require.NoError(t, order.Confirm())
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		_, err := svc.Confirm(ctx, tenantID, order.ID)
		assert.Error(t, err)
	})
}

func TestSalesOrderService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("ship then deliver", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		require.NoError(t, order.Confirm())
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)
		orderRepo.On("Save", ctx, order).Return(nil)

		svc := newTestService(orderRepo, new(MockProductRepository))

		resp, err := svc.Ship(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "shipped", resp.Status)

		resp, err = svc.Deliver(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "delivered", resp.Status)
	})

	t.Run("cancel records reason", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)
		orderRepo.On("Save", ctx, order).Return(nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		resp, err := svc.Cancel(ctx, tenantID, order.ID, CancelSalesOrderRequest{Reason: "customer request"})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		require.NotNil(t, resp.Notes)
		assert.Contains(t, *resp.Notes, "customer request")
	})
}

func TestSalesOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes a draft order", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)
		orderRepo.On("Delete", ctx, tenantID, order.ID).Return(nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		assert.NoError(t, svc.Delete(ctx, tenantID, order.ID))
	})

	t.Run("refuses to delete a confirmed order", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		order := draftOrderWithLine(t, tenantID)
		require.NoError(t, order.Confirm())
		orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)

		svc := newTestService(orderRepo, new(MockProductRepository))
		assert.Error(t, svc.Delete(ctx, tenantID, order.ID))
		orderRepo.AssertNotCalled(t, "Delete")
	})
}

func TestSalesOrderService_Clone(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	src := draftOrderWithLine(t, tenantID)
	require.NoError(t, src.Confirm())
	orderRepo.On("FindByID", ctx, tenantID, src.ID).Return(src, nil)
	orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00099", nil)
	orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(nil)

	svc := newTestService(orderRepo, new(MockProductRepository))
	resp, err := svc.Clone(ctx, tenantID, src.ID, CloneSalesOrderRequest{})

	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00099", resp.OrderNumber)
	assert.Equal(t, "draft", resp.Status)
	assert.NotEqual(t, src.ID, resp.ID)
	assert.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Lines[0].LineNumber)
}

func TestSalesOrderService_Clone_NumberConflict(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	src := draftOrderWithLine(t, tenantID)
	orderRepo.On("FindByID", ctx, tenantID, src.ID).Return(src, nil)
	orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00100", nil).Once()
	orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(shared.ErrAlreadyExists).Once()
	orderRepo.On("NextOrderNumber", ctx, tenantID, mock.AnythingOfType("time.Time")).Return("SO-2026-00101", nil).Once()
	orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.SalesOrder")).Return(nil).Once()

	svc := newTestService(orderRepo, new(MockProductRepository))
	resp, err := svc.Clone(ctx, tenantID, src.ID, CloneSalesOrderRequest{})

	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00101", resp.OrderNumber)
	orderRepo.AssertExpectations(t)
}

func TestSalesOrderService_RemoveLine(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	order := draftOrderWithLine(t, tenantID)
	lineID := order.Lines[0].ID
	orderRepo.On("FindByID", ctx, tenantID, order.ID).Return(order, nil)
	orderRepo.On("Save", ctx, order).Return(nil)

	svc := newTestService(orderRepo, new(MockProductRepository))
	resp, err := svc.RemoveLine(ctx, tenantID, order.ID, lineID)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.LineCount)
	assert.True(t, resp.TotalAmount.IsZero())
}
