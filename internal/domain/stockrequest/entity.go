// internal/domain/stockrequest/entity.go
package stockrequest

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the stock request lifecycle status
type Status string

const (
	StatusPending          Status = "pending"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusCancelled        Status = "cancelled"
	StatusFulfilled        Status = "fulfilled"
	StatusPartialFulfilled Status = "partial_fulfilled"
)

// Priority represents the urgency a requesting branch assigns to its request
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether the priority is one of the known levels
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// validTransitions maps each status to the statuses it may move to.
// rejected, cancelled, fulfilled and partial_fulfilled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusFulfilled, StatusPartialFulfilled},
}

// CanTransitionTo checks if the request can move to the target status
func (r *StockRequest) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[r.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// StockRequest represents a sub-branch replenishment request. Fulfillment
// creates a Transfer; the request never moves stock itself.
type StockRequest struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	RequestNumber      string         `gorm:"uniqueIndex;size:50" json:"request_number"`
	BranchID           uint           `gorm:"not null;index" json:"branch_id"` // Requesting branch
	Status             Status         `gorm:"not null;default:'pending';index" json:"status"`
	Priority           Priority       `gorm:"not null;default:'normal';size:10;index" json:"priority"`
	FulfillingBranchID *uint          `gorm:"index" json:"fulfilling_branch_id,omitempty"`
	TransferID         *uint          `gorm:"index" json:"transfer_id,omitempty"`
	Notes              string         `gorm:"type:text" json:"notes,omitempty"`
	RejectReason       string         `gorm:"size:255" json:"reject_reason,omitempty"`
	RequestedBy        uint           `gorm:"not null;index" json:"requested_by"`
	ApprovedBy         *uint          `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time     `json:"approved_at,omitempty"`
	FulfilledBy        *uint          `json:"fulfilled_by,omitempty"`
	FulfilledAt        *time.Time     `json:"fulfilled_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []StockRequestItem `gorm:"foreignKey:StockRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// StockRequestItem represents one requested line with its approved and
// fulfilled quantities
type StockRequestItem struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	StockRequestID    uint      `gorm:"not null;index" json:"stock_request_id"`
	ProductID         uint      `gorm:"not null;index" json:"product_id"`
	VariantSKU        string    `gorm:"size:100;default:''" json:"variant_sku,omitempty"`
	QuantityRequested int       `gorm:"not null" json:"quantity_requested"`
	QuantityApproved  int       `gorm:"default:0" json:"quantity_approved"`
	QuantityFulfilled int       `gorm:"default:0" json:"quantity_fulfilled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName overrides
func (StockRequest) TableName() string     { return "stock_requests" }
func (StockRequestItem) TableName() string { return "stock_request_items" }

// FulfillStatusFor resolves the terminal fulfillment status: fulfilled when
// every item shipped its approved quantity, partial_fulfilled otherwise
func FulfillStatusFor(items []StockRequestItem) Status {
	for _, item := range items {
		if item.QuantityFulfilled < item.QuantityApproved {
			return StatusPartialFulfilled
		}
	}
	return StatusFulfilled
}

// GenerateRequestNumber generates a unique request number
func GenerateRequestNumber(id uint) string {
	// Format: REQ-YYYYMMDD-XXXXX
	return fmt.Sprintf("REQ-%s-%05d", time.Now().Format("20060102"), id)
}
