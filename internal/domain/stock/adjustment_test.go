// internal/domain/stock/adjustment_test.go
package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
)

func TestDeltaFor(t *testing.T) {
	tests := []struct {
		name     string
		mode     AdjustmentMode
		current  int
		quantity int
		want     int
	}{
		{"add", AdjustmentModeAdd, 10, 5, 5},
		{"remove", AdjustmentModeRemove, 10, 3, -3},
		{"set above current", AdjustmentModeSet, 10, 25, 15},
		{"set below current", AdjustmentModeSet, 10, 4, -6},
		{"set to current is a no-op", AdjustmentModeSet, 10, 10, 0},
		{"set to zero", AdjustmentModeSet, 7, 0, -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deltaFor(tt.mode, tt.current, tt.quantity))
		})
	}
}

func TestValidateAdjustment(t *testing.T) {
	tests := []struct {
		name    string
		req     AdjustmentRequest
		wantErr bool
	}{
		{"valid add", AdjustmentRequest{Mode: AdjustmentModeAdd, Quantity: 5}, false},
		{"valid remove", AdjustmentRequest{Mode: AdjustmentModeRemove, Quantity: 2}, false},
		{"valid set to zero", AdjustmentRequest{Mode: AdjustmentModeSet, Quantity: 0}, false},
		{"add with zero quantity", AdjustmentRequest{Mode: AdjustmentModeAdd, Quantity: 0}, true},
		{"remove with negative quantity", AdjustmentRequest{Mode: AdjustmentModeRemove, Quantity: -1}, true},
		{"set with negative target", AdjustmentRequest{Mode: AdjustmentModeSet, Quantity: -1}, true},
		{"unknown mode", AdjustmentRequest{Mode: "recount", Quantity: 5}, true},
		{"negative lost amount", AdjustmentRequest{Mode: AdjustmentModeAdd, Quantity: 5, LostAmount: -100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAdjustment(&tt.req)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
