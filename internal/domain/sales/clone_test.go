package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone(t *testing.T) {
	cloneDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	buildSource := func(t *testing.T) *SalesOrder {
		order := createTestOrder(t)
		addr := uuid.New()
		order.SetShippingAddress(&addr)
		po := "PO-7788"
		order.SetCustomerPO(&po)
		addTestLine(t, order, 10, 2.50)
		addTestLine(t, order, 5, 4.00)
		return order
	}

	t.Run("copies commercial content and resets workflow state", func(t *testing.T) {
		src := buildSource(t)
		src.SetAllergenValidated(true)
		require.NoError(t, src.Confirm())

		clone, err := Clone(src, "SO-2026-00042", cloneDate)
		require.NoError(t, err)

		assert.Equal(t, "SO-2026-00042", clone.OrderNumber)
		assert.Equal(t, src.TenantID, clone.TenantID)
		assert.Equal(t, src.CustomerID, clone.CustomerID)
		assert.Equal(t, src.ShippingAddressID, clone.ShippingAddressID)
		assert.Nil(t, clone.CustomerPO, "customer PO belongs to the source order")
		assert.Equal(t, cloneDate, clone.OrderDate)

		assert.Equal(t, OrderStatusDraft, clone.Status)
		assert.Nil(t, clone.ConfirmedAt)
		assert.Nil(t, clone.ShippedAt)
		assert.False(t, clone.AllergenValidated, "allergen validation must be re-run on the clone")
		assert.NotEqual(t, src.ID, clone.ID)
	})

	t.Run("renumbers lines compactly in source order", func(t *testing.T) {
		src := buildSource(t)
		addTestLine(t, src, 1, 1.00)
		require.NoError(t, src.RemoveLine(src.Lines[1].ID)) // leave gap: 1, 3

		clone, err := Clone(src, "SO-2026-00043", cloneDate)
		require.NoError(t, err)

		require.Len(t, clone.Lines, 2)
		assert.Equal(t, 1, clone.Lines[0].LineNumber)
		assert.Equal(t, 2, clone.Lines[1].LineNumber)
		assert.Equal(t, src.Lines[0].ProductID, clone.Lines[0].ProductID)
	})

	t.Run("zeroes fulfillment quantities", func(t *testing.T) {
		src := buildSource(t)
		src.Lines[0].QuantityAllocated = decimal.NewFromInt(10)
		src.Lines[0].QuantityShipped = decimal.NewFromInt(10)

		clone, err := Clone(src, "SO-2026-00044", cloneDate)
		require.NoError(t, err)

		assert.True(t, clone.Lines[0].QuantityAllocated.IsZero())
		assert.True(t, clone.Lines[0].QuantityShipped.IsZero())
		assert.True(t, clone.Lines[0].QuantityOrdered.Equal(src.Lines[0].QuantityOrdered))
	})

	t.Run("recomputes totals from cloned lines", func(t *testing.T) {
		src := buildSource(t)
		src.TotalAmount = decimal.NewFromInt(999) // stale cached value

		clone, err := Clone(src, "SO-2026-00045", cloneDate)
		require.NoError(t, err)

		assert.True(t, clone.TotalAmount.Equal(decimal.NewFromInt(45)), "got %s", clone.TotalAmount)
		assert.Equal(t, 2, clone.LineCount)
	})

	t.Run("copies discounts by value", func(t *testing.T) {
		src := buildSource(t)
		require.NoError(t, src.Lines[0].ApplyDiscount(DiscountPercent, decimal.NewFromInt(10)))
		src.recalculateTotals()

		clone, err := Clone(src, "SO-2026-00046", cloneDate)
		require.NoError(t, err)

		require.NotNil(t, clone.Lines[0].DiscountType)
		assert.Equal(t, DiscountPercent, *clone.Lines[0].DiscountType)
		assert.NotSame(t, src.Lines[0].DiscountValue, clone.Lines[0].DiscountValue)
	})

	t.Run("clears delivery and ship dates even when still in the future", func(t *testing.T) {
		src := buildSource(t)
		future := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, src.SetRequiredDeliveryDate(&future))
		src.SetPromisedShipDate(&future)

		clone, err := Clone(src, "SO-2026-00047", cloneDate)
		require.NoError(t, err)
		assert.Nil(t, clone.RequiredDeliveryDate)
		assert.Nil(t, clone.PromisedShipDate)
	})

	t.Run("copies order notes by value", func(t *testing.T) {
		src := buildSource(t)
		notes := "deliver to loading dock B"
		src.SetNotes(&notes)

		clone, err := Clone(src, "SO-2026-00048", cloneDate)
		require.NoError(t, err)
		require.NotNil(t, clone.Notes)
		assert.Equal(t, "deliver to loading dock B", *clone.Notes)
		assert.NotSame(t, src.Notes, clone.Notes)
	})

	t.Run("rejects nil source", func(t *testing.T) {
		_, err := Clone(nil, "SO-2026-00049", cloneDate)
		assert.Error(t, err)
	})

	t.Run("carries notes verbatim, cancellation audit notes included", func(t *testing.T) {
		src := buildSource(t)
		require.NoError(t, src.Cancel("duplicate entry"))

		clone, err := Clone(src, "SO-2026-00050", cloneDate)
		require.NoError(t, err)
		require.NotNil(t, clone.Notes)
		assert.Contains(t, *clone.Notes, "[CANCELLED")
		assert.Contains(t, *clone.Notes, "duplicate entry")
		assert.Equal(t, OrderStatusDraft, clone.Status)
	})
}
