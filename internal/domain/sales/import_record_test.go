package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImportRecord(t *testing.T) {
	tenantID := uuid.New()

	t.Run("starts pending with preview counts", func(t *testing.T) {
		record, err := NewImportRecord(tenantID, 5, 3, 2)
		require.NoError(t, err)

		assert.Equal(t, ImportStatusPending, record.Status)
		assert.Equal(t, 5, record.TotalRows)
		assert.Equal(t, 3, record.ValidRows)
		assert.Equal(t, 2, record.InvalidRows)
		assert.Equal(t, 1, record.Version)
		assert.Nil(t, record.CompletedAt)
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		_, err := NewImportRecord(tenantID, -1, 0, 0)
		require.Error(t, err)
	})

	t.Run("widens total to cover valid plus invalid", func(t *testing.T) {
		record, err := NewImportRecord(tenantID, 0, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, record.TotalRows)
	})
}

func TestImportRecord_Complete(t *testing.T) {
	tenantID := uuid.New()

	t.Run("completes with created order numbers", func(t *testing.T) {
		record, err := NewImportRecord(tenantID, 3, 3, 0)
		require.NoError(t, err)

		err = record.Complete([]string{"SO-2026-00001", "SO-2026-00002"}, nil)
		require.NoError(t, err)

		assert.Equal(t, ImportStatusCompleted, record.Status)
		assert.Equal(t, 2, record.OrdersCreated)
		assert.Equal(t, 0, record.OrdersFailed)
		assert.False(t, record.HasFailures())
		assert.NotNil(t, record.CompletedAt)
		assert.Equal(t, 2, record.Version)
	})

	t.Run("partial failure still counts as completed", func(t *testing.T) {
		record, err := NewImportRecord(tenantID, 3, 3, 0)
		require.NoError(t, err)

		err = record.Complete([]string{"SO-2026-00003"}, []ImportFailure{
			{CustomerCode: "BISTRO", Error: "save failed"},
		})
		require.NoError(t, err)

		assert.Equal(t, ImportStatusCompleted, record.Status)
		assert.True(t, record.HasFailures())
	})

	t.Run("nothing created means failed", func(t *testing.T) {
		record, err := NewImportRecord(tenantID, 2, 2, 0)
		require.NoError(t, err)

		err = record.Complete(nil, []ImportFailure{
			{CustomerCode: "ACME", Error: "save failed"},
		})
		require.NoError(t, err)

		assert.Equal(t, ImportStatusFailed, record.Status)
	})

	t.Run("cannot complete twice", func(t *testing.T) {
		record, err := NewImportRecord(tenantID, 1, 1, 0)
		require.NoError(t, err)
		require.NoError(t, record.Complete([]string{"SO-2026-00004"}, nil))

		err = record.Complete([]string{"SO-2026-00005"}, nil)
		require.Error(t, err)
	})
}

func TestImportRecord_DetailRoundTrip(t *testing.T) {
	record, err := NewImportRecord(uuid.New(), 3, 2, 1)
	require.NoError(t, err)
	require.NoError(t, record.Complete([]string{"SO-2026-00009"}, []ImportFailure{
		{CustomerCode: "BISTRO", Error: "duplicate order number"},
	}))

	require.NoError(t, record.EncodeDetails())

	loaded := &ImportRecord{
		OrderNumbersRaw: record.OrderNumbersRaw,
		FailuresRaw:     record.FailuresRaw,
	}
	require.NoError(t, loaded.DecodeDetails())

	assert.Equal(t, []string{"SO-2026-00009"}, loaded.OrderNumbers)
	require.Len(t, loaded.Failures, 1)
	assert.Equal(t, "BISTRO", loaded.Failures[0].CustomerCode)
}

func TestImportRecord_SuccessRate(t *testing.T) {
	record, err := NewImportRecord(uuid.New(), 4, 3, 1)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, record.SuccessRate(), 0.001)

	empty, err := NewImportRecord(uuid.New(), 0, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, empty.SuccessRate())
}
