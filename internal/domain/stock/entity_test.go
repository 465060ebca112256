// internal/domain/stock/entity_test.go
package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementTypeSignValid(t *testing.T) {
	tests := []struct {
		name     string
		t        MovementType
		quantity int
		want     bool
	}{
		{"purchase positive", MovementTypePurchase, 10, true},
		{"purchase negative", MovementTypePurchase, -10, false},
		{"return positive", MovementTypeReturn, 3, true},
		{"transfer_in positive", MovementTypeTransferIn, 5, true},
		{"transfer_in negative", MovementTypeTransferIn, -5, false},
		{"initial positive", MovementTypeInitial, 100, true},
		{"sale negative", MovementTypeSale, -2, true},
		{"sale positive", MovementTypeSale, 2, false},
		{"transfer_out negative", MovementTypeTransferOut, -7, true},
		{"transfer_out positive", MovementTypeTransferOut, 7, false},
		{"adjustment positive", MovementTypeAdjustment, 4, true},
		{"adjustment negative", MovementTypeAdjustment, -4, true},
		{"recount negative", MovementTypeRecount, -1, true},
		{"zero quantity never valid", MovementTypeAdjustment, 0, false},
		{"unknown type", MovementType("restock"), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.SignValid(tt.quantity))
		})
	}
}

func TestMovementTypeIsSeed(t *testing.T) {
	assert.True(t, MovementTypeInitial.IsSeed())
	assert.True(t, MovementTypeRecount.IsSeed())
	assert.False(t, MovementTypePurchase.IsSeed())
	assert.False(t, MovementTypeAdjustment.IsSeed())
}

func TestReplayQuantity(t *testing.T) {
	movements := []StockMovement{
		{Type: MovementTypeInitial, Quantity: 50, BalanceAfter: 50},
		{Type: MovementTypeSale, Quantity: -8, BalanceAfter: 42},
		{Type: MovementTypePurchase, Quantity: 20, BalanceAfter: 62},
		{Type: MovementTypeAdjustment, Quantity: -2, BalanceAfter: 60},
	}

	got := ReplayQuantity(movements)
	assert.Equal(t, 60, got)
	assert.Equal(t, movements[len(movements)-1].BalanceAfter, got)
}

func TestReplayQuantityEmpty(t *testing.T) {
	assert.Equal(t, 0, ReplayQuantity(nil))
}

func TestStockEntryIsLowStock(t *testing.T) {
	entry := StockEntry{Quantity: 5, ReorderPoint: 10}
	assert.True(t, entry.IsLowStock())

	entry = StockEntry{Quantity: 11, ReorderPoint: 10}
	assert.False(t, entry.IsLowStock())

	// A zero reorder point disables the alert entirely
	entry = StockEntry{Quantity: 0, ReorderPoint: 0}
	assert.False(t, entry.IsLowStock())
}
