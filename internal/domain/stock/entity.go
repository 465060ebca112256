// internal/domain/stock/entity.go
package stock

import (
	"time"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypePurchase    MovementType = "purchase"
	MovementTypeSale        MovementType = "sale"
	MovementTypeReturn      MovementType = "return"
	MovementTypeAdjustment  MovementType = "adjustment"
	MovementTypeTransferIn  MovementType = "transfer_in"
	MovementTypeTransferOut MovementType = "transfer_out"
	MovementTypeInitial     MovementType = "initial"
	MovementTypeRecount     MovementType = "recount"
)

// SignValid reports whether the quantity sign matches the movement type.
// The convention is fixed: positive for purchase/return/transfer_in/initial,
// negative for sale/transfer_out, either sign for adjustment/recount.
func (t MovementType) SignValid(quantity int) bool {
	if quantity == 0 {
		return false
	}
	switch t {
	case MovementTypePurchase, MovementTypeReturn, MovementTypeTransferIn, MovementTypeInitial:
		return quantity > 0
	case MovementTypeSale, MovementTypeTransferOut:
		return quantity < 0
	case MovementTypeAdjustment, MovementTypeRecount:
		return true
	default:
		return false
	}
}

// IsSeed reports whether the movement type seeds a key rather than trading
// against existing stock. Seed types bypass the insufficient-stock check.
func (t MovementType) IsSeed() bool {
	return t == MovementTypeInitial || t == MovementTypeRecount
}

// ReferenceKind identifies the document type a movement originated from
type ReferenceKind string

const (
	ReferencePurchase   ReferenceKind = "purchase"
	ReferenceTransfer   ReferenceKind = "transfer"
	ReferenceAdjustment ReferenceKind = "adjustment"
	ReferenceSale       ReferenceKind = "sale"
)

// Reference is a tagged pointer to the originating document
type Reference struct {
	Kind ReferenceKind `gorm:"column:reference_kind;size:20" json:"reference_kind"`
	ID   uint          `gorm:"column:reference_id" json:"reference_id"`
}

// Key identifies a stock position: one product (optionally one variant) at
// one branch. VariantSKU is empty for simple products.
type Key struct {
	ProductID  uint
	VariantSKU string
	BranchID   uint
}

// StockMovement is one immutable ledger row recording a signed quantity
// change. Movements are never edited or deleted; corrections are new
// movements. There are deliberately no UpdatedAt/DeletedAt columns.
type StockMovement struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ProductID    uint         `gorm:"not null;index:idx_stock_movements_key" json:"product_id"`
	VariantSKU   string       `gorm:"size:100;default:'';index:idx_stock_movements_key" json:"variant_sku,omitempty"`
	BranchID     uint         `gorm:"not null;index:idx_stock_movements_key" json:"branch_id"`
	Type         MovementType `gorm:"not null;size:20;index" json:"type"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	BalanceAfter int          `gorm:"not null" json:"balance_after"`
	CostPerUnit  *int64       `json:"cost_per_unit,omitempty"` // In cents
	Reference    Reference    `gorm:"embedded" json:"reference"`
	ActorID      uint         `gorm:"not null;index" json:"actor_id"`
	Reason       string       `gorm:"size:255" json:"reason,omitempty"`
	Notes        string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
}

// TableName overrides
func (StockMovement) TableName() string { return "stock_movements" }

// Key returns the stock position this movement belongs to
func (m *StockMovement) Key() Key {
	return Key{ProductID: m.ProductID, VariantSKU: m.VariantSKU, BranchID: m.BranchID}
}

// StockEntry is the current-quantity cache for a key. It is created lazily
// on first movement and only ever mutated together with a ledger append.
type StockEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"not null;uniqueIndex:idx_stock_entries_key" json:"product_id"`
	VariantSKU   string    `gorm:"size:100;default:'';uniqueIndex:idx_stock_entries_key" json:"variant_sku,omitempty"`
	BranchID     uint      `gorm:"not null;uniqueIndex:idx_stock_entries_key" json:"branch_id"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	ReorderPoint int       `gorm:"not null;default:0" json:"reorder_point"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides
func (StockEntry) TableName() string { return "stock_entries" }

// Key returns the stock position this entry caches
func (e *StockEntry) Key() Key {
	return Key{ProductID: e.ProductID, VariantSKU: e.VariantSKU, BranchID: e.BranchID}
}

// IsLowStock reports whether the entry is at or below its reorder point
func (e *StockEntry) IsLowStock() bool {
	return e.ReorderPoint > 0 && e.Quantity <= e.ReorderPoint
}

// ReplayQuantity replays a key's movements in insertion order from zero and
// returns the resulting quantity. The last movement's BalanceAfter must equal
// this value for a consistent ledger.
func ReplayQuantity(movements []StockMovement) int {
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	return total
}
