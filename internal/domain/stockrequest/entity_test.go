// internal/domain/stockrequest/entity_test.go
package stockrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityValid(t *testing.T) {
	tests := []struct {
		priority Priority
		want     bool
	}{
		{PriorityLow, true},
		{PriorityNormal, true},
		{PriorityHigh, true},
		{PriorityUrgent, true},
		{Priority(""), false},
		{Priority("critical"), false},
		{Priority("NORMAL"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.Valid())
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusFulfilled, false},
		{StatusApproved, StatusFulfilled, true},
		{StatusApproved, StatusPartialFulfilled, true},
		{StatusApproved, StatusCancelled, false},
		{StatusRejected, StatusApproved, false},
		{StatusFulfilled, StatusApproved, false},
		{StatusPartialFulfilled, StatusFulfilled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			r := &StockRequest{Status: tt.from}
			assert.Equal(t, tt.want, r.CanTransitionTo(tt.to))
		})
	}
}

func TestFulfillStatusFor(t *testing.T) {
	t.Run("everything shipped in full", func(t *testing.T) {
		items := []StockRequestItem{
			{QuantityApproved: 15, QuantityFulfilled: 15},
			{QuantityApproved: 4, QuantityFulfilled: 4},
		}
		assert.Equal(t, StatusFulfilled, FulfillStatusFor(items))
	})

	t.Run("any short line makes it partial", func(t *testing.T) {
		items := []StockRequestItem{
			{QuantityApproved: 15, QuantityFulfilled: 15},
			{QuantityApproved: 4, QuantityFulfilled: 2},
		}
		assert.Equal(t, StatusPartialFulfilled, FulfillStatusFor(items))
	})

	t.Run("zero-approved lines do not count against fulfillment", func(t *testing.T) {
		items := []StockRequestItem{
			{QuantityApproved: 0, QuantityFulfilled: 0},
			{QuantityApproved: 10, QuantityFulfilled: 10},
		}
		assert.Equal(t, StatusFulfilled, FulfillStatusFor(items))
	})
}

func TestGenerateRequestNumber(t *testing.T) {
	assert.Regexp(t, `^REQ-\d{8}-00123$`, GenerateRequestNumber(123))
}
