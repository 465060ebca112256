// internal/domain/stockrequest/service.go
package stockrequest

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/transfer"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/gormx"
	"gorm.io/gorm"
)

// Service handles stock request operations
type Service struct {
	db        *gorm.DB
	config    *config.Config
	transfers *transfer.Service
}

// NewService creates a new stock request service
func NewService(db *gorm.DB, cfg *config.Config, transfers *transfer.Service) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		transfers: transfers,
	}
}

// CreateRequest represents stock request creation data. Priority defaults to
// normal when omitted.
type CreateRequest struct {
	Items    []CreateItemRequest `json:"items" binding:"required,min=1"`
	Priority Priority            `json:"priority"`
	Notes    string              `json:"notes"`
}

// CreateItemRequest represents one requested line
type CreateItemRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity" binding:"required"`
}

// Create creates a pending request for the actor's own branch
func (s *Service) Create(req *CreateRequest, branchID, actorID uint) (*StockRequest, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidation("request must have at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.NewValidation("item %d: quantity must be positive", i+1)
		}
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidation("invalid priority '%s'", priority)
	}

	var request *StockRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items := make([]StockRequestItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, StockRequestItem{
				ProductID:         item.ProductID,
				VariantSKU:        item.VariantSKU,
				QuantityRequested: item.Quantity,
			})
		}

		request = &StockRequest{
			BranchID:    branchID,
			Status:      StatusPending,
			Priority:    priority,
			Notes:       req.Notes,
			RequestedBy: actorID,
			Items:       items,
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create stock request: %w", err)
		}

		request.RequestNumber = GenerateRequestNumber(request.ID)
		if err := tx.Model(request).Update("request_number", request.RequestNumber).Error; err != nil {
			return fmt.Errorf("failed to update request number: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Get retrieves a request with its items
func (s *Service) Get(id uint) (*StockRequest, error) {
	var request StockRequest
	err := s.db.Preload("Items").First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "stock request", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock request: %w", err)
	}
	return &request, nil
}

// ListRequest represents stock request list query parameters
type ListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	BranchID uint   `form:"branch_id"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// List retrieves requests with filtering and pagination, newest first
func (s *Service) List(req *ListRequest) ([]StockRequest, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := s.db.Model(&StockRequest{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.BranchID > 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock requests: %w", err)
	}

	var requests []StockRequest
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve stock requests: %w", err)
	}

	return requests, total, nil
}

// ApproveRequest represents approval data. Items may cap approved quantities
// per line; omitted lines approve in full.
type ApproveRequest struct {
	Items []ApproveItemRequest `json:"items"`
	Notes string               `json:"notes"`
}

// ApproveItemRequest caps one line's approved quantity
type ApproveItemRequest struct {
	ItemID           uint `json:"item_id" binding:"required"`
	QuantityApproved int  `json:"quantity_approved"`
}

// Approve sets per-item approved quantities and moves the request to
// approved. No stock moves here.
func (s *Service) Approve(id uint, req *ApproveRequest, actorID uint) (*StockRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRequest(tx, id)
		if err != nil {
			return err
		}
		if !r.CanTransitionTo(StatusApproved) {
			return &apperrors.InvalidStateTransitionError{Entity: "stock request", From: string(r.Status), Action: "approve"}
		}

		caps := make(map[uint]int, len(req.Items))
		for _, item := range req.Items {
			caps[item.ItemID] = item.QuantityApproved
		}

		for i := range r.Items {
			item := &r.Items[i]
			approved := item.QuantityRequested
			if cap, ok := caps[item.ID]; ok {
				approved = cap
			}
			if approved < 0 || approved > item.QuantityRequested {
				return apperrors.NewValidation("approved quantity %d out of range for item %d (requested %d)", approved, item.ID, item.QuantityRequested)
			}
			item.QuantityApproved = approved
			if err := tx.Model(&StockRequestItem{}).Where("id = ?", item.ID).Update("quantity_approved", approved).Error; err != nil {
				return fmt.Errorf("failed to update approved quantity: %w", err)
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      StatusApproved,
			"approved_by": actorID,
			"approved_at": now,
		}
		if req.Notes != "" {
			updates["notes"] = appendNote(r.Notes, req.Notes)
		}
		if err := tx.Model(r).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to approve stock request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// RejectRequest represents rejection data; the reason is mandatory
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject rejects a pending request. Terminal.
func (s *Service) Reject(id uint, req *RejectRequest, actorID uint) (*StockRequest, error) {
	if req.Reason == "" {
		return nil, apperrors.NewValidation("rejection reason is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRequest(tx, id)
		if err != nil {
			return err
		}
		if !r.CanTransitionTo(StatusRejected) {
			return &apperrors.InvalidStateTransitionError{Entity: "stock request", From: string(r.Status), Action: "reject"}
		}
		updates := map[string]interface{}{
			"status":        StatusRejected,
			"reject_reason": req.Reason,
		}
		if err := tx.Model(r).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to reject stock request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Cancel cancels a pending request. Only the requester may cancel their own
// request.
func (s *Service) Cancel(id uint, actorID uint) (*StockRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRequest(tx, id)
		if err != nil {
			return err
		}
		if r.RequestedBy != actorID {
			return apperrors.NewForbidden("only the requester may cancel stock request %d", id)
		}
		if !r.CanTransitionTo(StatusCancelled) {
			return &apperrors.InvalidStateTransitionError{Entity: "stock request", From: string(r.Status), Action: "cancel"}
		}
		if err := tx.Model(r).Update("status", StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel stock request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// FulfillRequest represents fulfillment data. The transfer ships from
// FromBranchID to the requesting branch; items may lower the shipped
// quantity per line, omitted lines ship the approved quantity in full.
type FulfillRequest struct {
	FromBranchID  uint                 `json:"from_branch_id"`
	Items         []FulfillItemRequest `json:"items"`
	VehicleNumber string               `json:"vehicle_number"`
	DriverName    string               `json:"driver_name"`
	DriverPhone   string               `json:"driver_phone"`
	Notes         string               `json:"notes"`
}

// FulfillItemRequest overrides one line's shipped quantity and carton
type FulfillItemRequest struct {
	ItemID            uint   `json:"item_id" binding:"required"`
	QuantityFulfilled int    `json:"quantity_fulfilled"`
	CartonNumber      string `json:"carton_number"`
}

// FulfillResult carries the updated request and the transfer it created
type FulfillResult struct {
	Request  *StockRequest      `json:"request"`
	Transfer *transfer.Transfer `json:"transfer"`
}

// Fulfill creates exactly one draft Transfer for the approved quantities,
// links it onto the request and resolves the terminal status, all in one
// transaction. The created transfer moves no stock; its own dispatch and
// receive steps do that.
func (s *Service) Fulfill(id uint, req *FulfillRequest, actorID uint) (*FulfillResult, error) {
	var created *transfer.Transfer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRequest(tx, id)
		if err != nil {
			return err
		}
		if !r.CanTransitionTo(StatusFulfilled) {
			return &apperrors.InvalidStateTransitionError{Entity: "stock request", From: string(r.Status), Action: "fulfill"}
		}
		if req.FromBranchID == 0 {
			return apperrors.NewValidation("fulfilling branch is required")
		}
		if req.FromBranchID == r.BranchID {
			return apperrors.NewValidation("fulfilling branch must differ from the requesting branch")
		}

		overrides := make(map[uint]FulfillItemRequest, len(req.Items))
		for _, item := range req.Items {
			overrides[item.ItemID] = item
		}

		transferItems := make([]transfer.TransferItemRequest, 0, len(r.Items))
		for i := range r.Items {
			item := &r.Items[i]
			fulfilled := item.QuantityApproved
			carton := ""
			if override, ok := overrides[item.ID]; ok {
				fulfilled = override.QuantityFulfilled
				carton = override.CartonNumber
			}
			if fulfilled < 0 || fulfilled > item.QuantityApproved {
				return apperrors.NewValidation("fulfilled quantity %d out of range for item %d (approved %d)", fulfilled, item.ID, item.QuantityApproved)
			}

			item.QuantityFulfilled = fulfilled
			if err := tx.Model(&StockRequestItem{}).Where("id = ?", item.ID).Update("quantity_fulfilled", fulfilled).Error; err != nil {
				return fmt.Errorf("failed to update fulfilled quantity: %w", err)
			}

			if fulfilled == 0 {
				continue
			}
			transferItems = append(transferItems, transfer.TransferItemRequest{
				ProductID:    item.ProductID,
				VariantSKU:   item.VariantSKU,
				Quantity:     fulfilled,
				CartonNumber: carton,
			})
		}

		if len(transferItems) == 0 {
			return apperrors.NewValidation("fulfillment must ship at least one item")
		}

		created, err = s.transfers.CreateInTx(tx, &transfer.CreateTransferRequest{
			FromBranchID:  req.FromBranchID,
			ToBranchID:    r.BranchID,
			Items:         transferItems,
			VehicleNumber: req.VehicleNumber,
			DriverName:    req.DriverName,
			DriverPhone:   req.DriverPhone,
			Notes:         req.Notes,
		}, actorID)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":               FulfillStatusFor(r.Items),
			"transfer_id":          created.ID,
			"fulfilling_branch_id": req.FromBranchID,
			"fulfilled_by":         actorID,
			"fulfilled_at":         now,
		}
		if err := tx.Model(r).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to fulfill stock request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	request, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return &FulfillResult{Request: request, Transfer: created}, nil
}

// lockRequest loads a request with its items under a row-level lock so
// concurrent actions on the same document serialize
func (s *Service) lockRequest(tx *gorm.DB, id uint) (*StockRequest, error) {
	var request StockRequest
	err := gormx.RowLock(tx).First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "stock request", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock request: %w", err)
	}
	if err := tx.Where("stock_request_id = ?", id).Order("id ASC").Find(&request.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock request items: %w", err)
	}
	return &request, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
