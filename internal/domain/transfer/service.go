// internal/domain/transfer/service.go
package transfer

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

// Service handles transfer operations
type Service struct {
	db     *gorm.DB
	config *config.Config
	ledger *stock.Ledger
}

// NewService creates a new transfer service
func NewService(db *gorm.DB, cfg *config.Config, ledger *stock.Ledger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		ledger: ledger,
	}
}

// CreateTransferRequest represents transfer creation data
type CreateTransferRequest struct {
	FromBranchID  uint                  `json:"from_branch_id" binding:"required"`
	ToBranchID    uint                  `json:"to_branch_id" binding:"required"`
	Items         []TransferItemRequest `json:"items" binding:"required,min=1"`
	VehicleNumber string                `json:"vehicle_number"`
	DriverName    string                `json:"driver_name"`
	DriverPhone   string                `json:"driver_phone"`
	Notes         string                `json:"notes"`
}

// TransferItemRequest represents one requested shipment line
type TransferItemRequest struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	VariantSKU   string `json:"variant_sku"`
	Quantity     int    `json:"quantity" binding:"required"`
	CartonNumber string `json:"carton_number"`
}

// Create creates a transfer in draft status. No stock moves until dispatch.
func (s *Service) Create(req *CreateTransferRequest, actorID uint) (*Transfer, error) {
	var transfer *Transfer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		transfer, txErr = s.CreateInTx(tx, req, actorID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// CreateInTx creates a transfer inside the caller's transaction. The stock
// request fulfillment uses this so the created transfer and the request's
// status flip commit together.
func (s *Service) CreateInTx(tx *gorm.DB, req *CreateTransferRequest, actorID uint) (*Transfer, error) {
	if err := validateTransferRequest(req); err != nil {
		return nil, err
	}

	items := make([]TransferItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, TransferItem{
			ProductID:    item.ProductID,
			VariantSKU:   item.VariantSKU,
			Quantity:     item.Quantity,
			CartonNumber: item.CartonNumber,
		})
	}

	transfer := &Transfer{
		FromBranchID:  req.FromBranchID,
		ToBranchID:    req.ToBranchID,
		Status:        StatusDraft,
		VehicleNumber: req.VehicleNumber,
		DriverName:    req.DriverName,
		DriverPhone:   req.DriverPhone,
		Notes:         req.Notes,
		CreatedBy:     actorID,
		Items:         items,
	}
	if err := tx.Create(transfer).Error; err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	transfer.ChallanNumber = GenerateChallanNumber(transfer.ID)
	if err := tx.Model(transfer).Update("challan_number", transfer.ChallanNumber).Error; err != nil {
		return nil, fmt.Errorf("failed to update challan number: %w", err)
	}

	if err := s.appendHistory(tx, transfer.ID, StatusDraft, actorID, ""); err != nil {
		return nil, err
	}

	return transfer, nil
}

// Get retrieves a transfer with its items and status history
func (s *Service) Get(id uint) (*Transfer, error) {
	var transfer Transfer
	err := s.db.Preload("Items").Preload("StatusHistory").First(&transfer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "transfer", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transfer: %w", err)
	}
	return &transfer, nil
}

// ListRequest represents transfer list query parameters
type ListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=20"`
	Status       string `form:"status"`
	FromBranchID uint   `form:"from_branch_id"`
	ToBranchID   uint   `form:"to_branch_id"`
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
}

// List retrieves transfers with filtering and pagination, newest first
func (s *Service) List(req *ListRequest) ([]Transfer, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := s.db.Model(&Transfer{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.FromBranchID > 0 {
		query = query.Where("from_branch_id = ?", req.FromBranchID)
	}
	if req.ToBranchID > 0 {
		query = query.Where("to_branch_id = ?", req.ToBranchID)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []Transfer
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transfers: %w", err)
	}

	return transfers, total, nil
}

// Approve checks, read-only, that the sender currently holds every item's
// quantity and moves the transfer to approved. Stock can still change before
// dispatch; dispatch re-validates under the entry locks.
func (s *Service) Approve(id uint, actorID uint) (*Transfer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(StatusApproved) {
			return &apperrors.InvalidStateTransitionError{Entity: "transfer", From: string(t.Status), Action: "approve"}
		}

		for i := range t.Items {
			item := &t.Items[i]
			available := 0
			entry, err := s.ledger.Entry(stock.Key{ProductID: item.ProductID, VariantSKU: item.VariantSKU, BranchID: t.FromBranchID})
			if err == nil {
				available = entry.Quantity
			} else if !apperrors.IsNotFound(err) {
				return err
			}
			if available < item.Quantity {
				return &apperrors.InsufficientStockError{
					ProductID:  item.ProductID,
					VariantSKU: item.VariantSKU,
					BranchID:   t.FromBranchID,
					Available:  available,
					Requested:  item.Quantity,
				}
			}
		}

		return s.moveTo(tx, t, StatusApproved, actorID, "", nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Dispatch posts one transfer_out movement per item at the sender and flips
// the status, all-or-nothing. Availability is re-validated by the ledger
// under the entry locks.
func (s *Service) Dispatch(id uint, actorID uint) (*Transfer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(StatusDispatched) {
			return &apperrors.InvalidStateTransitionError{Entity: "transfer", From: string(t.Status), Action: "dispatch"}
		}

		for i := range t.Items {
			item := &t.Items[i]
			_, err := s.ledger.AppendInTx(tx, &stock.MovementInput{
				Key: stock.Key{
					ProductID:  item.ProductID,
					VariantSKU: item.VariantSKU,
					BranchID:   t.FromBranchID,
				},
				Type:      stock.MovementTypeTransferOut,
				Quantity:  -item.Quantity,
				Reference: stock.Reference{Kind: stock.ReferenceTransfer, ID: t.ID},
				ActorID:   actorID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now()
		return s.moveTo(tx, t, StatusDispatched, actorID, "", map[string]interface{}{"dispatched_at": now})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// MarkInTransit flips a dispatched transfer to in_transit
func (s *Service) MarkInTransit(id uint, actorID uint) (*Transfer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(StatusInTransit) {
			return &apperrors.InvalidStateTransitionError{Entity: "transfer", From: string(t.Status), Action: "mark_in_transit"}
		}
		return s.moveTo(tx, t, StatusInTransit, actorID, "", nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// ReceiveRequest represents receive data. Items may override the received
// quantity per line; omitted lines receive in full.
type ReceiveRequest struct {
	Items []ReceiveItemRequest `json:"items"`
	Notes string               `json:"notes"`
}

// ReceiveItemRequest overrides one line's received quantity
type ReceiveItemRequest struct {
	ItemID           uint `json:"item_id" binding:"required"`
	QuantityReceived int  `json:"quantity_received"`
}

// Receive posts one transfer_in movement per received line at the receiver
// and resolves the terminal status: received when everything arrived in full,
// partial_received when any line is short. Both are terminal; a discrepancy
// after a partial receive is settled with a manual adjustment.
func (s *Service) Receive(id uint, req *ReceiveRequest, actorID uint) (*Transfer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(StatusReceived) {
			return &apperrors.InvalidStateTransitionError{Entity: "transfer", From: string(t.Status), Action: "receive"}
		}

		overrides := make(map[uint]int, len(req.Items))
		for _, item := range req.Items {
			overrides[item.ItemID] = item.QuantityReceived
		}

		for i := range t.Items {
			item := &t.Items[i]
			received := item.Quantity
			if override, ok := overrides[item.ID]; ok {
				received = override
			}
			if received < 0 || received > item.Quantity {
				return apperrors.NewValidation("received quantity %d out of range for item %d (dispatched %d)", received, item.ID, item.Quantity)
			}

			item.QuantityReceived = received
			if err := tx.Model(&TransferItem{}).Where("id = ?", item.ID).Update("quantity_received", received).Error; err != nil {
				return fmt.Errorf("failed to update received quantity: %w", err)
			}

			if received == 0 {
				continue
			}
			_, err := s.ledger.AppendInTx(tx, &stock.MovementInput{
				Key: stock.Key{
					ProductID:  item.ProductID,
					VariantSKU: item.VariantSKU,
					BranchID:   t.ToBranchID,
				},
				Type:      stock.MovementTypeTransferIn,
				Quantity:  received,
				Reference: stock.Reference{Kind: stock.ReferenceTransfer, ID: t.ID},
				ActorID:   actorID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now()
		target := ReceiveStatusFor(t.Items)
		return s.moveTo(tx, t, target, actorID, req.Notes, map[string]interface{}{
			"received_by": actorID,
			"received_at": now,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// CancelRequest represents cancellation data
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels a transfer before any stock has moved
func (s *Service) Cancel(id uint, req *CancelRequest, actorID uint) (*Transfer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(StatusCancelled) {
			return &apperrors.InvalidStateTransitionError{Entity: "transfer", From: string(t.Status), Action: "cancel"}
		}
		return s.moveTo(tx, t, StatusCancelled, actorID, req.Reason, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// moveTo flips the status, applies extra column updates and appends the
// history row inside the caller's transaction
func (s *Service) moveTo(tx *gorm.DB, t *Transfer, target Status, actorID uint, notes string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": target}
	for k, v := range extra {
		updates[k] = v
	}
	if err := tx.Model(t).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update transfer status: %w", err)
	}
	t.Status = target
	return s.appendHistory(tx, t.ID, target, actorID, notes)
}

func (s *Service) appendHistory(tx *gorm.DB, transferID uint, status Status, actorID uint, notes string) error {
	history := &TransferStatusHistory{
		TransferID: transferID,
		Status:     status,
		ActorID:    actorID,
		Notes:      notes,
	}
	if err := tx.Create(history).Error; err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

// lockTransfer loads a transfer with its items under a row-level lock so
// concurrent actions on the same document serialize
func (s *Service) lockTransfer(tx *gorm.DB, id uint) (*Transfer, error) {
	var transfer Transfer
	err := gormx.RowLock(tx).First(&transfer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "transfer", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transfer: %w", err)
	}
	if err := tx.Where("transfer_id = ?", id).Order("id ASC").Find(&transfer.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load transfer items: %w", err)
	}
	return &transfer, nil
}

func validateTransferRequest(req *CreateTransferRequest) error {
	if req.FromBranchID == req.ToBranchID {
		return apperrors.NewValidation("sender and receiver branches must differ")
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidation("transfer must have at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return apperrors.NewValidation("item %d: quantity must be positive", i+1)
		}
	}
	return nil
}
