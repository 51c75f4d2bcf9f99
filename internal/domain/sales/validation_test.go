package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateForConfirmation(t *testing.T) {
	t.Run("passes for a complete order", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, 10, 2.50)

		result := ValidateForConfirmation(order)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("fails for order without lines", func(t *testing.T) {
		order := createTestOrder(t)

		result := ValidateForConfirmation(order)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "At least one line is required")
	})

	t.Run("fails for missing customer", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, 10, 2.50)
		order.CustomerID = uuid.Nil

		result := ValidateForConfirmation(order)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "Customer is required")
	})

	t.Run("reports quantity violation once for many bad lines", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, 1, 1.00)
		// Corrupt quantities directly; AddLine would reject them.
		order.Lines = append(order.Lines,
			SalesOrderLine{ID: uuid.New(), LineNumber: 2, ProductID: uuid.New(), QuantityOrdered: decimal.Zero},
			SalesOrderLine{ID: uuid.New(), LineNumber: 3, ProductID: uuid.New(), QuantityOrdered: decimal.NewFromInt(-5)},
		)

		result := ValidateForConfirmation(order)
		assert.False(t, result.Valid)

		count := 0
		for _, e := range result.Errors {
			if e == "Quantity must be greater than zero" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("accumulates all failures", func(t *testing.T) {
		order := createTestOrder(t)
		order.CustomerID = uuid.Nil

		result := ValidateForConfirmation(order)
		require.False(t, result.Valid)
		assert.Len(t, result.Errors, 2)
		assert.Equal(t, []string{"Customer is required", "At least one line is required"}, result.Errors)
	})
}
