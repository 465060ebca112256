// internal/domain/stock/ledger_test.go
package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
)

func TestNextQuantity(t *testing.T) {
	key := Key{ProductID: 1, BranchID: 2}

	t.Run("credit increases the balance", func(t *testing.T) {
		next, err := nextQuantity(key, 10, MovementTypePurchase, 5)
		require.NoError(t, err)
		assert.Equal(t, 15, next)
	})

	t.Run("debit decreases the balance", func(t *testing.T) {
		next, err := nextQuantity(key, 10, MovementTypeTransferOut, -10)
		require.NoError(t, err)
		assert.Equal(t, 0, next)
	})

	t.Run("sign mismatch is a validation error", func(t *testing.T) {
		_, err := nextQuantity(key, 10, MovementTypePurchase, -5)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("zero quantity is a validation error", func(t *testing.T) {
		_, err := nextQuantity(key, 10, MovementTypeAdjustment, 0)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("overdraw reports insufficient stock", func(t *testing.T) {
		_, err := nextQuantity(key, 4, MovementTypeSale, -5)
		require.True(t, apperrors.IsInsufficientStock(err))

		var insufficient *apperrors.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 4, insufficient.Available)
		assert.Equal(t, 5, insufficient.Requested)
		assert.Equal(t, key.ProductID, insufficient.ProductID)
		assert.Equal(t, key.BranchID, insufficient.BranchID)
	})

	t.Run("negative adjustment within balance is legal", func(t *testing.T) {
		next, err := nextQuantity(key, 4, MovementTypeAdjustment, -4)
		require.NoError(t, err)
		assert.Equal(t, 0, next)
	})

	t.Run("seed overdraw is a validation error, not insufficiency", func(t *testing.T) {
		_, err := nextQuantity(key, 3, MovementTypeRecount, -10)
		assert.True(t, apperrors.IsValidation(err))
		assert.False(t, apperrors.IsInsufficientStock(err))
	})
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults applied", 0, 0, 1, 20},
		{"negative page clamped", -3, 10, 1, 10},
		{"limit capped", 2, 500, 2, 100},
		{"valid values untouched", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := tt.page, tt.limit
			normalizePage(&page, &limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
