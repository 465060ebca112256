// internal/domain/stock/adjustment.go
package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/finance"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// AdjustmentMode represents the kind of manual correction
type AdjustmentMode string

const (
	AdjustmentModeAdd    AdjustmentMode = "add"
	AdjustmentModeRemove AdjustmentMode = "remove"
	AdjustmentModeSet    AdjustmentMode = "set"
)

// Adjustment is the document row for one manual stock correction. The posted
// ledger movement is linked; a 'set' that lands on the current quantity posts
// no movement and leaves MovementID nil.
type Adjustment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	AdjustmentNumber string         `gorm:"uniqueIndex;size:50" json:"adjustment_number"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	VariantSKU       string         `gorm:"size:100;default:''" json:"variant_sku,omitempty"`
	BranchID         uint           `gorm:"not null;index" json:"branch_id"`
	Mode             AdjustmentMode `gorm:"not null;size:10" json:"mode"`
	Quantity         int            `gorm:"not null" json:"quantity"`     // As requested (target for 'set')
	Delta            int            `gorm:"not null" json:"delta"`        // Signed quantity applied to the ledger
	LostAmount       int64          `gorm:"default:0" json:"lost_amount"` // In cents
	MovementID       *uint          `gorm:"index" json:"movement_id,omitempty"`
	ActorID          uint           `gorm:"not null;index" json:"actor_id"`
	Reason           string         `gorm:"size:255" json:"reason,omitempty"`
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName overrides
func (Adjustment) TableName() string { return "stock_adjustments" }

// AdjustmentRequest represents adjustment data
type AdjustmentRequest struct {
	ProductID  uint           `json:"product_id" binding:"required"`
	VariantSKU string         `json:"variant_sku"`
	BranchID   uint           `json:"branch_id" binding:"required"`
	Mode       AdjustmentMode `json:"mode" binding:"required"`
	Quantity   int            `json:"quantity"`
	LostAmount int64          `json:"lost_amount"` // In cents
	Reason     string         `json:"reason"`
	Notes      string         `json:"notes"`
}

// AdjustmentResult carries the applied adjustment plus a non-fatal warning
// when best-effort expense posting failed
type AdjustmentResult struct {
	Adjustment *Adjustment
	Warning    string
}

// AdjustmentEngine applies manual corrections through the ledger
type AdjustmentEngine struct {
	db      *gorm.DB
	ledger  *Ledger
	finance finance.Poster
	logger  *logrus.Logger
}

// NewAdjustmentEngine creates a new adjustment engine. The finance poster may
// be nil, which disables expense posting for lost amounts.
func NewAdjustmentEngine(db *gorm.DB, cfg *config.Config, ledger *Ledger, poster finance.Poster, logger *logrus.Logger) *AdjustmentEngine {
	return &AdjustmentEngine{
		db:      db,
		ledger:  ledger,
		finance: poster,
		logger:  logger,
	}
}

// Apply validates and applies one adjustment. The ledger write and the
// adjustment document commit atomically; the optional expense posting for
// LostAmount happens after commit and reports failure as a warning only.
func (e *AdjustmentEngine) Apply(ctx context.Context, req *AdjustmentRequest, actorID uint) (*AdjustmentResult, error) {
	if err := validateAdjustment(req); err != nil {
		return nil, err
	}

	key := Key{ProductID: req.ProductID, VariantSKU: req.VariantSKU, BranchID: req.BranchID}
	var adjustment *Adjustment

	err := e.db.Transaction(func(tx *gorm.DB) error {
		entry, err := e.ledger.LockEntry(tx, key)
		if err != nil {
			return err
		}

		delta := deltaFor(req.Mode, entry.Quantity, req.Quantity)

		adjustment = &Adjustment{
			ProductID:  req.ProductID,
			VariantSKU: req.VariantSKU,
			BranchID:   req.BranchID,
			Mode:       req.Mode,
			Quantity:   req.Quantity,
			Delta:      delta,
			LostAmount: req.LostAmount,
			ActorID:    actorID,
			Reason:     req.Reason,
			Notes:      req.Notes,
		}
		if err := tx.Create(adjustment).Error; err != nil {
			return fmt.Errorf("failed to create adjustment: %w", err)
		}

		adjustment.AdjustmentNumber = generateAdjustmentNumber(adjustment.ID)
		if err := tx.Model(adjustment).Update("adjustment_number", adjustment.AdjustmentNumber).Error; err != nil {
			return fmt.Errorf("failed to update adjustment number: %w", err)
		}

		// A 'set' that matches the current quantity posts no movement
		if delta == 0 {
			return nil
		}

		movement, err := e.ledger.AppendToEntry(tx, entry, &MovementInput{
			Key:       key,
			Type:      MovementTypeAdjustment,
			Quantity:  delta,
			Reference: Reference{Kind: ReferenceAdjustment, ID: adjustment.ID},
			ActorID:   actorID,
			Reason:    req.Reason,
			Notes:     req.Notes,
		})
		if err != nil {
			return err
		}

		adjustment.MovementID = &movement.ID
		if err := tx.Model(adjustment).Update("movement_id", movement.ID).Error; err != nil {
			return fmt.Errorf("failed to link adjustment movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &AdjustmentResult{Adjustment: adjustment}

	if req.LostAmount > 0 {
		if warning := e.postLostExpense(ctx, adjustment); warning != "" {
			result.Warning = warning
		}
	}

	return result, nil
}

// postLostExpense posts the lost amount to the finance collaborator. The
// adjustment is already committed; failure here is reported, not fatal.
func (e *AdjustmentEngine) postLostExpense(ctx context.Context, adj *Adjustment) string {
	if e.finance == nil {
		return "expense posting skipped: finance service not configured"
	}

	err := e.finance.PostExpense(ctx, finance.ExpenseEntry{
		Category:    "stock_loss",
		Amount:      adj.LostAmount,
		BranchID:    adj.BranchID,
		Description: fmt.Sprintf("Stock adjustment %s: %s", adj.AdjustmentNumber, adj.Reason),
		Reference:   adj.AdjustmentNumber,
		ActorID:     adj.ActorID,
	})
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"adjustment": adj.AdjustmentNumber,
			"amount":     adj.LostAmount,
			"error":      err.Error(),
		}).Warn("failed to post lost amount to finance service")
		return fmt.Sprintf("adjustment applied, but expense posting failed: %v", err)
	}

	return ""
}

// Get retrieves a single adjustment by id
func (e *AdjustmentEngine) Get(id uint) (*Adjustment, error) {
	var adj Adjustment
	if err := e.db.First(&adj, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "adjustment", ID: id}
		}
		return nil, fmt.Errorf("failed to retrieve adjustment: %w", err)
	}
	return &adj, nil
}

// AdjustmentListRequest represents adjustment list query parameters
type AdjustmentListRequest struct {
	Page      int  `form:"page,default=1"`
	Limit     int  `form:"limit,default=20"`
	BranchID  uint `form:"branch_id"`
	ProductID uint `form:"product_id"`
}

// List retrieves adjustments with filtering and pagination, newest first
func (e *AdjustmentEngine) List(req *AdjustmentListRequest) ([]Adjustment, int64, error) {
	normalizePage(&req.Page, &req.Limit)

	query := e.db.Model(&Adjustment{})
	if req.BranchID > 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}
	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count adjustments: %w", err)
	}

	var adjustments []Adjustment
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&adjustments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve adjustments: %w", err)
	}

	return adjustments, total, nil
}

// validateAdjustment checks mode/quantity combinations
func validateAdjustment(req *AdjustmentRequest) error {
	switch req.Mode {
	case AdjustmentModeAdd, AdjustmentModeRemove:
		if req.Quantity <= 0 {
			return apperrors.NewValidation("quantity must be positive for mode '%s'", req.Mode)
		}
	case AdjustmentModeSet:
		if req.Quantity < 0 {
			return apperrors.NewValidation("target quantity must not be negative for mode 'set'")
		}
	default:
		return apperrors.NewValidation("invalid adjustment mode '%s'", req.Mode)
	}

	if req.LostAmount < 0 {
		return apperrors.NewValidation("lost amount must not be negative")
	}

	return nil
}

// deltaFor computes the signed ledger delta for a mode. For 'set' the delta
// is the difference to the absolute target, which keeps the resulting
// quantity non-negative by construction.
func deltaFor(mode AdjustmentMode, current, quantity int) int {
	switch mode {
	case AdjustmentModeAdd:
		return quantity
	case AdjustmentModeRemove:
		return -quantity
	case AdjustmentModeSet:
		return quantity - current
	default:
		return 0
	}
}

func generateAdjustmentNumber(id uint) string {
	// Format: ADJ-YYYYMMDD-XXXXX
	return fmt.Sprintf("ADJ-%s-%05d", time.Now().Format("20060102"), id)
}
