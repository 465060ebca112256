// internal/domain/purchase/service.go
package purchase

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/gormx"
	"gorm.io/gorm"
)

// Service handles purchase operations
type Service struct {
	db     *gorm.DB
	config *config.Config
	ledger *stock.Ledger
}

// NewService creates a new purchase service
func NewService(db *gorm.DB, cfg *config.Config, ledger *stock.Ledger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		ledger: ledger,
	}
}

// CreatePurchaseRequest represents purchase creation data
type CreatePurchaseRequest struct {
	SupplierID   *uint                 `json:"supplier_id"`
	BranchID     uint                  `json:"branch_id" binding:"required"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1"`
	PaymentTerms string                `json:"payment_terms"`
	Notes        string                `json:"notes"`
}

// PurchaseItemRequest represents one requested invoice line
type PurchaseItemRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity" binding:"required"`
	CostPrice  int64  `json:"cost_price"` // Per unit, in cents
}

// Create creates a purchase in draft status. No stock moves until receive.
func (s *Service) Create(req *CreatePurchaseRequest, actorID uint) (*Purchase, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	var purchase *Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var grandTotal int64
		items := make([]PurchaseItem, 0, len(req.Items))
		for _, item := range req.Items {
			totalCost := int64(item.Quantity) * item.CostPrice
			grandTotal += totalCost
			items = append(items, PurchaseItem{
				ProductID:  item.ProductID,
				VariantSKU: item.VariantSKU,
				Quantity:   item.Quantity,
				CostPrice:  item.CostPrice,
				TotalCost:  totalCost,
			})
		}

		purchase = &Purchase{
			SupplierID:    req.SupplierID,
			BranchID:      req.BranchID,
			Status:        StatusDraft,
			PaymentStatus: PaymentStatusUnpaid,
			DueAmount:     grandTotal,
			GrandTotal:    grandTotal,
			PaymentTerms:  req.PaymentTerms,
			Notes:         req.Notes,
			CreatedBy:     actorID,
			Items:         items,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		purchase.InvoiceNumber = GenerateInvoiceNumber(purchase.ID)
		if err := tx.Model(purchase).Update("invoice_number", purchase.InvoiceNumber).Error; err != nil {
			return fmt.Errorf("failed to update invoice number: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return purchase, nil
}

// Get retrieves a purchase with its items
func (s *Service) Get(id uint) (*Purchase, error) {
	var purchase Purchase
	err := s.db.Preload("Items").First(&purchase, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "purchase", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve purchase: %w", err)
	}
	return &purchase, nil
}

// ListRequest represents purchase list query parameters
type ListRequest struct {
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=20"`
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	SupplierID    uint   `form:"supplier_id"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
}

// List retrieves purchases with filtering and pagination, newest first
func (s *Service) List(req *ListRequest) ([]Purchase, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := s.db.Model(&Purchase{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.PaymentStatus != "" {
		query = query.Where("payment_status = ?", req.PaymentStatus)
	}
	if req.SupplierID > 0 {
		query = query.Where("supplier_id = ?", req.SupplierID)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	var purchases []Purchase
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve purchases: %w", err)
	}

	return purchases, total, nil
}

// Approve moves a draft purchase to approved
func (s *Service) Approve(id uint, actorID uint) (*Purchase, error) {
	var purchase *Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockPurchase(tx, id)
		if err != nil {
			return err
		}
		if !p.CanApprove() {
			return &apperrors.InvalidStateTransitionError{Entity: "purchase", From: string(p.Status), Action: "approve"}
		}
		if err := tx.Model(p).Update("status", StatusApproved).Error; err != nil {
			return fmt.Errorf("failed to approve purchase: %w", err)
		}
		p.Status = StatusApproved
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// Receive posts one positive purchase movement per item at the receiving
// branch and flips the status, all in one transaction. A purchase receives
// exactly once.
func (s *Service) Receive(id uint, actorID uint) (*Purchase, error) {
	var purchase *Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockPurchase(tx, id)
		if err != nil {
			return err
		}
		if !p.CanReceive() {
			return &apperrors.InvalidStateTransitionError{Entity: "purchase", From: string(p.Status), Action: "receive"}
		}

		for i := range p.Items {
			item := &p.Items[i]
			costPerUnit := item.CostPrice
			_, err := s.ledger.AppendInTx(tx, &stock.MovementInput{
				Key: stock.Key{
					ProductID:  item.ProductID,
					VariantSKU: item.VariantSKU,
					BranchID:   p.BranchID,
				},
				Type:        stock.MovementTypePurchase,
				Quantity:    item.Quantity,
				CostPerUnit: &costPerUnit,
				Reference:   stock.Reference{Kind: stock.ReferencePurchase, ID: p.ID},
				ActorID:     actorID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      StatusReceived,
			"received_by": actorID,
			"received_at": now,
		}
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mark purchase received: %w", err)
		}
		p.Status = StatusReceived
		p.ReceivedBy = &actorID
		p.ReceivedAt = &now
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// PayRequest represents a cumulative payment against the invoice
type PayRequest struct {
	Amount int64 `json:"amount" binding:"required"` // In cents
}

// Pay records a payment and rederives the payment status. Payment state is
// orthogonal to the stock lifecycle; paying never moves stock and is legal in
// any non-cancelled status.
func (s *Service) Pay(id uint, req *PayRequest, actorID uint) (*Purchase, error) {
	if req.Amount <= 0 {
		return nil, apperrors.NewValidation("payment amount must be positive")
	}

	var purchase *Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockPurchase(tx, id)
		if err != nil {
			return err
		}
		if p.Status == StatusCancelled {
			return &apperrors.InvalidStateTransitionError{Entity: "purchase", From: string(p.Status), Action: "pay"}
		}

		paid := p.PaidAmount + req.Amount
		updates := map[string]interface{}{
			"paid_amount":    paid,
			"due_amount":     DueAmountFor(paid, p.GrandTotal),
			"payment_status": PaymentStatusFor(paid, p.GrandTotal),
		}
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		p.PaidAmount = paid
		p.DueAmount = DueAmountFor(paid, p.GrandTotal)
		p.PaymentStatus = PaymentStatusFor(paid, p.GrandTotal)
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// CancelRequest represents cancellation data
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels a purchase before any stock has moved
func (s *Service) Cancel(id uint, req *CancelRequest, actorID uint) (*Purchase, error) {
	var purchase *Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockPurchase(tx, id)
		if err != nil {
			return err
		}
		if !p.CanCancel() {
			return &apperrors.InvalidStateTransitionError{Entity: "purchase", From: string(p.Status), Action: "cancel"}
		}

		updates := map[string]interface{}{"status": StatusCancelled}
		if req.Reason != "" {
			updates["notes"] = appendNote(p.Notes, "Cancelled: "+req.Reason)
		}
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel purchase: %w", err)
		}
		p.Status = StatusCancelled
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// lockPurchase loads a purchase with its items under a row-level lock so
// concurrent actions on the same document serialize
func (s *Service) lockPurchase(tx *gorm.DB, id uint) (*Purchase, error) {
	var purchase Purchase
	err := gormx.RowLock(tx).First(&purchase, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "purchase", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock purchase: %w", err)
	}
	if err := tx.Where("purchase_id = ?", id).Find(&purchase.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load purchase items: %w", err)
	}
	return &purchase, nil
}

func validateItems(items []PurchaseItemRequest) error {
	if len(items) == 0 {
		return apperrors.NewValidation("purchase must have at least one item")
	}
	for i, item := range items {
		if item.Quantity <= 0 {
			return apperrors.NewValidation("item %d: quantity must be positive", i+1)
		}
		if item.CostPrice < 0 {
			return apperrors.NewValidation("item %d: cost price must not be negative", i+1)
		}
	}
	return nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
