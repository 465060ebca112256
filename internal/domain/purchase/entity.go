// internal/domain/purchase/entity.go
package purchase

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the purchase lifecycle status
type Status string

const (
	StatusDraft     Status = "draft"
	StatusApproved  Status = "approved"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus represents the supplier payment status, independent of the
// stock lifecycle
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Purchase represents a supplier invoice at the head office
type Purchase struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	InvoiceNumber string         `gorm:"uniqueIndex;size:50" json:"invoice_number"`
	SupplierID    *uint          `gorm:"index" json:"supplier_id,omitempty"`
	BranchID      uint           `gorm:"not null;index" json:"branch_id"`
	Status        Status         `gorm:"not null;default:'draft';index" json:"status"`
	PaymentStatus PaymentStatus  `gorm:"not null;default:'unpaid'" json:"payment_status"`
	PaidAmount    int64          `gorm:"default:0" json:"paid_amount"` // In cents
	DueAmount     int64          `gorm:"default:0" json:"due_amount"`  // In cents
	GrandTotal    int64          `gorm:"not null" json:"grand_total"`  // In cents, derived from items
	PaymentTerms  string         `gorm:"size:100" json:"payment_terms"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedBy     uint           `gorm:"not null;index" json:"created_by"`
	ReceivedBy    *uint          `json:"received_by,omitempty"`
	ReceivedAt    *time.Time     `json:"received_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// PurchaseItem represents one line of a supplier invoice
type PurchaseItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PurchaseID uint      `gorm:"not null;index" json:"purchase_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	VariantSKU string    `gorm:"size:100;default:''" json:"variant_sku,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CostPrice  int64     `gorm:"not null" json:"cost_price"` // Per unit, in cents
	TotalCost  int64     `gorm:"not null" json:"total_cost"` // Quantity * CostPrice
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides
func (Purchase) TableName() string     { return "purchases" }
func (PurchaseItem) TableName() string { return "purchase_items" }

// CanApprove checks if the purchase can move to approved
func (p *Purchase) CanApprove() bool {
	return p.Status == StatusDraft
}

// CanReceive checks if goods can be received against this purchase
func (p *Purchase) CanReceive() bool {
	return p.Status == StatusDraft || p.Status == StatusApproved
}

// CanCancel checks if the purchase can be cancelled. Never legal after
// receive: stock has already moved.
func (p *Purchase) CanCancel() bool {
	return p.Status == StatusDraft || p.Status == StatusApproved
}

// PaymentStatusFor derives the payment status from amounts
func PaymentStatusFor(paidAmount, grandTotal int64) PaymentStatus {
	switch {
	case paidAmount <= 0:
		return PaymentStatusUnpaid
	case paidAmount >= grandTotal:
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}

// DueAmountFor derives the outstanding amount, never negative
func DueAmountFor(paidAmount, grandTotal int64) int64 {
	due := grandTotal - paidAmount
	if due < 0 {
		return 0
	}
	return due
}

// GenerateInvoiceNumber generates a unique invoice number
func GenerateInvoiceNumber(id uint) string {
	// Format: PUR-YYYYMMDD-XXXXX
	return fmt.Sprintf("PUR-%s-%05d", time.Now().Format("20060102"), id)
}
