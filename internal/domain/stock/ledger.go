// internal/domain/stock/ledger.go
package stock

import (
	"errors"
	"fmt"

	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/gormx"
	"gorm.io/gorm"
)

// Ledger is the append-only store of stock movements and the single source
// of truth for branch quantities. Every append updates the StockEntry cache
// in the same transaction; a movement row and its entry update are never
// persisted separately.
type Ledger struct {
	db     *gorm.DB
	config *config.Config
}

// NewLedger creates a new stock ledger
func NewLedger(db *gorm.DB, cfg *config.Config) *Ledger {
	return &Ledger{
		db:     db,
		config: cfg,
	}
}

// MovementInput describes one movement to append
type MovementInput struct {
	Key         Key
	Type        MovementType
	Quantity    int
	CostPerUnit *int64
	Reference   Reference
	ActorID     uint
	Reason      string
	Notes       string
}

// Append posts a single movement in its own transaction
func (l *Ledger) Append(input *MovementInput) (*StockMovement, error) {
	var movement *StockMovement
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		movement, txErr = l.AppendInTx(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// AppendInTx posts a movement inside the caller's transaction. Workflows use
// this so item movements, status flips and history rows share one atomic
// boundary.
func (l *Ledger) AppendInTx(tx *gorm.DB, input *MovementInput) (*StockMovement, error) {
	entry, err := l.LockEntry(tx, input.Key)
	if err != nil {
		return nil, err
	}
	return l.AppendToEntry(tx, entry, input)
}

// LockEntry loads the StockEntry row for a key under a row-level lock,
// creating it lazily on first use. The lock serializes all read-check-write
// sequences against the same key; different keys proceed in parallel.
func (l *Ledger) LockEntry(tx *gorm.DB, key Key) (*StockEntry, error) {
	var entry StockEntry
	err := gormx.RowLock(tx).
		Where("product_id = ? AND variant_sku = ? AND branch_id = ?", key.ProductID, key.VariantSKU, key.BranchID).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = StockEntry{
			ProductID:  key.ProductID,
			VariantSKU: key.VariantSKU,
			BranchID:   key.BranchID,
			Quantity:   0,
		}
		if createErr := tx.Create(&entry).Error; createErr != nil {
			// A concurrent first movement for the same key raced us on the
			// unique index; the caller may retry the whole action.
			return nil, &apperrors.ConflictError{
				Message: fmt.Sprintf("concurrent stock entry creation for product %d at branch %d", key.ProductID, key.BranchID),
			}
		}
		return &entry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock entry: %w", err)
	}

	return &entry, nil
}

// AppendToEntry posts a movement against an entry already locked in tx
func (l *Ledger) AppendToEntry(tx *gorm.DB, entry *StockEntry, input *MovementInput) (*StockMovement, error) {
	newQuantity, err := nextQuantity(entry.Key(), entry.Quantity, input.Type, input.Quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&StockEntry{}).Where("id = ?", entry.ID).Update("quantity", newQuantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update stock entry: %w", err)
	}
	entry.Quantity = newQuantity

	movement := &StockMovement{
		ProductID:    entry.ProductID,
		VariantSKU:   entry.VariantSKU,
		BranchID:     entry.BranchID,
		Type:         input.Type,
		Quantity:     input.Quantity,
		BalanceAfter: newQuantity,
		CostPerUnit:  input.CostPerUnit,
		Reference:    input.Reference,
		ActorID:      input.ActorID,
		Reason:       input.Reason,
		Notes:        input.Notes,
	}

	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	return movement, nil
}

// nextQuantity validates the movement against the running-sum invariant and
// returns the resulting quantity
func nextQuantity(key Key, current int, t MovementType, quantity int) (int, error) {
	if !t.SignValid(quantity) {
		return 0, apperrors.NewValidation("quantity %d is not valid for movement type '%s'", quantity, t)
	}

	next := current + quantity
	if next < 0 {
		if t.IsSeed() {
			return 0, apperrors.NewValidation("seed movement would drive stock negative (current %d, quantity %d)", current, quantity)
		}
		return 0, &apperrors.InsufficientStockError{
			ProductID:  key.ProductID,
			VariantSKU: key.VariantSKU,
			BranchID:   key.BranchID,
			Available:  current,
			Requested:  -quantity,
		}
	}

	return next, nil
}

// Entry retrieves the current stock entry for a key
func (l *Ledger) Entry(key Key) (*StockEntry, error) {
	var entry StockEntry
	err := l.db.
		Where("product_id = ? AND variant_sku = ? AND branch_id = ?", key.ProductID, key.VariantSKU, key.BranchID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "stock entry", ID: key.ProductID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock entry: %w", err)
	}
	return &entry, nil
}

// EntryListRequest represents stock entry list query parameters
type EntryListRequest struct {
	Page      int  `form:"page,default=1"`
	Limit     int  `form:"limit,default=20"`
	BranchID  uint `form:"branch_id"`
	ProductID uint `form:"product_id"`
	LowStock  bool `form:"low_stock"`
}

// Entries retrieves stock entries with filtering and pagination
func (l *Ledger) Entries(req *EntryListRequest) ([]StockEntry, int64, error) {
	normalizePage(&req.Page, &req.Limit)

	query := l.db.Model(&StockEntry{})
	if req.BranchID > 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}
	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.LowStock {
		query = query.Where("reorder_point > 0 AND quantity <= reorder_point")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock entries: %w", err)
	}

	var entries []StockEntry
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("branch_id, product_id, variant_sku").Offset(offset).Limit(req.Limit).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve stock entries: %w", err)
	}

	return entries, total, nil
}

// SetReorderPoint updates the reorder point for a key's entry
func (l *Ledger) SetReorderPoint(key Key, reorderPoint int) (*StockEntry, error) {
	if reorderPoint < 0 {
		return nil, apperrors.NewValidation("reorder point must not be negative")
	}
	entry, err := l.Entry(key)
	if err != nil {
		return nil, err
	}
	if err := l.db.Model(&StockEntry{}).Where("id = ?", entry.ID).Update("reorder_point", reorderPoint).Error; err != nil {
		return nil, fmt.Errorf("failed to update reorder point: %w", err)
	}
	entry.ReorderPoint = reorderPoint
	return entry, nil
}

// MovementListRequest represents movement list query parameters
type MovementListRequest struct {
	Page       int          `form:"page,default=1"`
	Limit      int          `form:"limit,default=20"`
	ProductID  uint         `form:"product_id"`
	VariantSKU string       `form:"variant_sku"`
	BranchID   uint         `form:"branch_id"`
	Type       MovementType `form:"type"`
	DateFrom   string       `form:"date_from"`
	DateTo     string       `form:"date_to"`
}

// Movements retrieves movements with filtering and pagination, newest first
func (l *Ledger) Movements(req *MovementListRequest) ([]StockMovement, int64, error) {
	normalizePage(&req.Page, &req.Limit)

	query := l.db.Model(&StockMovement{})
	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.VariantSKU != "" {
		query = query.Where("variant_sku = ?", req.VariantSKU)
	}
	if req.BranchID > 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	var movements []StockMovement
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return movements, total, nil
}

// MovementsForKey retrieves the full movement sequence for a key in
// insertion order, oldest first. Within a key this order matches the
// serialization order of the entry lock.
func (l *Ledger) MovementsForKey(key Key) ([]StockMovement, error) {
	var movements []StockMovement
	err := l.db.
		Where("product_id = ? AND variant_sku = ? AND branch_id = ?", key.ProductID, key.VariantSKU, key.BranchID).
		Order("id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements for key: %w", err)
	}
	return movements, nil
}

// RebuildEntry recomputes an entry's quantity by replaying its movement
// sequence. The entry is derived state; a rebuild must reproduce the cached
// value exactly on a consistent ledger.
func (l *Ledger) RebuildEntry(key Key) (*StockEntry, error) {
	var entry *StockEntry
	err := l.db.Transaction(func(tx *gorm.DB) error {
		locked, err := l.LockEntry(tx, key)
		if err != nil {
			return err
		}

		var movements []StockMovement
		if err := tx.
			Where("product_id = ? AND variant_sku = ? AND branch_id = ?", key.ProductID, key.VariantSKU, key.BranchID).
			Order("id ASC").
			Find(&movements).Error; err != nil {
			return fmt.Errorf("failed to load movements for rebuild: %w", err)
		}

		replayed := ReplayQuantity(movements)
		if err := tx.Model(&StockEntry{}).Where("id = ?", locked.ID).Update("quantity", replayed).Error; err != nil {
			return fmt.Errorf("failed to rebuild stock entry: %w", err)
		}
		locked.Quantity = replayed
		entry = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func normalizePage(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 {
		*limit = 20
	}
	if *limit > 100 {
		*limit = 100
	}
}
