package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-ledger/src/apperrors"
)

func TestValidation(t *testing.T) {
	err := apperrors.Validation("batch_no", "must not be empty")

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "batch_no", validationErr.Field)
	assert.Equal(t, "must not be empty", validationErr.Reason)
	assert.Equal(t, "validation failed on batch_no: must not be empty", err.Error())
}

func TestCapacityError(t *testing.T) {
	err := &apperrors.CapacityError{
		RemainingQty:    60,
		RemainingWeight: decimal.NewFromInt(6),
	}

	var capacityErr *apperrors.CapacityError
	require.ErrorAs(t, fmt.Errorf("allocate: %w", err), &capacityErr)
	assert.Equal(t, int64(60), capacityErr.RemainingQty)
}

func TestStore(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, apperrors.Store("insert", nil))
	})

	t.Run("wraps and unwraps the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := apperrors.Store("insert inbound", cause)

		var storeErr *apperrors.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "insert inbound", storeErr.Op)
		assert.ErrorIs(t, err, cause)
	})
}

func TestSentinels(t *testing.T) {
	wrapped := fmt.Errorf("load movement: %w", apperrors.ErrNotFound)
	assert.ErrorIs(t, wrapped, apperrors.ErrNotFound)
	assert.NotErrorIs(t, wrapped, apperrors.ErrForbidden)
}
