// internal/domain/transfer/entity.go
package transfer

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the transfer lifecycle status
type Status string

const (
	StatusDraft           Status = "draft"
	StatusApproved        Status = "approved"
	StatusDispatched      Status = "dispatched"
	StatusInTransit       Status = "in_transit"
	StatusReceived        Status = "received"
	StatusPartialReceived Status = "partial_received"
	StatusCancelled       Status = "cancelled"
)

// validTransitions maps each status to the statuses it may move to. The
// lifecycle is linear with one terminal fan-out at receive; received,
// partial_received and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusDraft:      {StatusApproved, StatusCancelled},
	StatusApproved:   {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusInTransit},
	StatusInTransit:  {StatusReceived, StatusPartialReceived},
}

// CanTransitionTo checks if the transfer can move to the target status
func (t *Transfer) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[t.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transfer represents an inter-branch shipment (challan)
type Transfer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ChallanNumber string         `gorm:"uniqueIndex;size:50" json:"challan_number"`
	FromBranchID  uint           `gorm:"not null;index" json:"from_branch_id"`
	ToBranchID    uint           `gorm:"not null;index" json:"to_branch_id"`
	Status        Status         `gorm:"not null;default:'draft';index" json:"status"`
	VehicleNumber string         `gorm:"size:50" json:"vehicle_number,omitempty"`
	DriverName    string         `gorm:"size:100" json:"driver_name,omitempty"`
	DriverPhone   string         `gorm:"size:20" json:"driver_phone,omitempty"`
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy     uint           `gorm:"not null;index" json:"created_by"`
	DispatchedAt  *time.Time     `json:"dispatched_at,omitempty"`
	ReceivedBy    *uint          `json:"received_by,omitempty"`
	ReceivedAt    *time.Time     `json:"received_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []TransferItem          `gorm:"foreignKey:TransferID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []TransferStatusHistory `gorm:"foreignKey:TransferID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// TransferItem represents one shipped line. CartonNumber is free text with no
// registry behind it.
type TransferItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TransferID       uint      `gorm:"not null;index" json:"transfer_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	VariantSKU       string    `gorm:"size:100;default:''" json:"variant_sku,omitempty"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	QuantityReceived int       `gorm:"default:0" json:"quantity_received"`
	CartonNumber     string    `gorm:"size:50" json:"carton_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TransferStatusHistory is one append-only record of a status change
type TransferStatusHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TransferID uint      `gorm:"not null;index" json:"transfer_id"`
	Status     Status    `gorm:"not null;size:20" json:"status"`
	ActorID    uint      `gorm:"not null" json:"actor_id"`
	Notes      string    `gorm:"size:255" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Transfer) TableName() string              { return "transfers" }
func (TransferItem) TableName() string          { return "transfer_items" }
func (TransferStatusHistory) TableName() string { return "transfer_status_history" }

// IsTerminal reports whether no further transitions are possible
func (t *Transfer) IsTerminal() bool {
	return len(validTransitions[t.Status]) == 0
}

// ReceiveStatusFor resolves the terminal receive status: received when every
// item came in full, partial_received when any item is short
func ReceiveStatusFor(items []TransferItem) Status {
	for _, item := range items {
		if item.QuantityReceived < item.Quantity {
			return StatusPartialReceived
		}
	}
	return StatusReceived
}

// GenerateChallanNumber generates a unique challan number
func GenerateChallanNumber(id uint) string {
	// Format: CHN-YYYYMMDD-XXXXX
	return fmt.Sprintf("CHN-%s-%05d", time.Now().Format("20060102"), id)
}
