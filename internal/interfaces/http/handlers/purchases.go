// internal/interfaces/http/handlers/purchases.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/policy"
	"github.com/your-org/retail-backend/internal/domain/purchase"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/supplier"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// PurchaseHandler handles purchase workflow endpoints
type PurchaseHandler struct {
	purchaseService *purchase.Service
	branchService   *branch.Service
	supplierService *supplier.Service
	config          *config.Config
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(db *gorm.DB, cfg *config.Config) *PurchaseHandler {
	ledger := stock.NewLedger(db, cfg)
	return &PurchaseHandler{
		purchaseService: purchase.NewService(db, cfg, ledger),
		branchService:   branch.NewService(db, cfg),
		supplierService: supplier.NewService(db, cfg),
		config:          cfg,
	}
}

// Create handles POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.authorize(actor, "create"); err != nil {
		response.Error(c, err)
		return
	}

	var req purchase.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	// Purchases land at a head-office branch
	target, err := h.branchService.Get(req.BranchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !target.IsHeadOffice() {
		response.Error(c, apperrors.NewForbidden("purchases may only target a head office branch"))
		return
	}

	// The supplier reference, when given, must resolve in the directory
	if req.SupplierID != nil {
		if _, err := h.supplierService.Get(*req.SupplierID); err != nil {
			response.Error(c, err)
			return
		}
	}

	created, err := h.purchaseService.Create(&req, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var req purchase.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	purchases, total, err := h.purchaseService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, purchases, response.NewPagination(req.Page, req.Limit, total))
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	p, err := h.purchaseService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// purchaseActionRequest is the body of POST /purchases/:id/action. Only the
// fields relevant to the named action are read.
type purchaseActionRequest struct {
	Action string `json:"action" binding:"required"`
	Amount int64  `json:"amount"` // pay, in cents
	Reason string `json:"reason"` // cancel
}

// Action handles POST /purchases/:id/action
func (h *PurchaseHandler) Action(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req purchaseActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	if err := h.authorize(actor, req.Action); err != nil {
		response.Error(c, err)
		return
	}

	var (
		p   *purchase.Purchase
		err error
	)
	switch req.Action {
	case "approve":
		p, err = h.purchaseService.Approve(id, actor.ID)
	case "receive":
		p, err = h.purchaseService.Receive(id, actor.ID)
	case "pay":
		p, err = h.purchaseService.Pay(id, &purchase.PayRequest{Amount: req.Amount}, actor.ID)
	case "cancel":
		p, err = h.purchaseService.Cancel(id, &purchase.CancelRequest{Reason: req.Reason}, actor.ID)
	default:
		response.Error(c, apperrors.NewValidation("unknown purchase action '%s'", req.Action))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *PurchaseHandler) authorize(actor policy.Actor, action string) error {
	br, err := h.branchService.Get(actor.BranchID)
	if err != nil {
		return err
	}
	return policy.Authorize(actor, br, policy.WorkflowPurchase, action)
}
