// internal/domain/purchase/entity_test.go
package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		paid  int64
		total int64
		want  PaymentStatus
	}{
		{"nothing paid", 0, 10000, PaymentStatusUnpaid},
		{"partially paid", 4000, 10000, PaymentStatusPartial},
		{"fully paid", 10000, 10000, PaymentStatusPaid},
		{"overpaid still paid", 12000, 10000, PaymentStatusPaid},
		{"zero total with payment", 1, 0, PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatusFor(tt.paid, tt.total))
		})
	}
}

func TestDueAmountFor(t *testing.T) {
	assert.Equal(t, int64(6000), DueAmountFor(4000, 10000))
	assert.Equal(t, int64(0), DueAmountFor(10000, 10000))

	// Overpayment never reports a negative due
	assert.Equal(t, int64(0), DueAmountFor(15000, 10000))
}

func TestPurchaseStatusPredicates(t *testing.T) {
	tests := []struct {
		status     Status
		canApprove bool
		canReceive bool
		canCancel  bool
	}{
		{StatusDraft, true, true, true},
		{StatusApproved, false, true, true},
		{StatusReceived, false, false, false},
		{StatusCancelled, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := &Purchase{Status: tt.status}
			assert.Equal(t, tt.canApprove, p.CanApprove())
			assert.Equal(t, tt.canReceive, p.CanReceive())
			assert.Equal(t, tt.canCancel, p.CanCancel())
		})
	}
}

func TestGenerateInvoiceNumber(t *testing.T) {
	number := GenerateInvoiceNumber(42)
	assert.Regexp(t, `^PUR-\d{8}-00042$`, number)
}
