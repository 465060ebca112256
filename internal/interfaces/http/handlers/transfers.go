// internal/interfaces/http/handlers/transfers.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/policy"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/transfer"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// TransferHandler handles transfer (challan) workflow endpoints
type TransferHandler struct {
	transferService *transfer.Service
	branchService   *branch.Service
	config          *config.Config
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(db *gorm.DB, cfg *config.Config) *TransferHandler {
	ledger := stock.NewLedger(db, cfg)
	return &TransferHandler{
		transferService: transfer.NewService(db, cfg, ledger),
		branchService:   branch.NewService(db, cfg),
		config:          cfg,
	}
}

// Create handles POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.authorize(actor, "create"); err != nil {
		response.Error(c, err)
		return
	}

	var req transfer.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	// Both ends must exist in the directory
	if _, err := h.branchService.Get(req.FromBranchID); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.branchService.Get(req.ToBranchID); err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.transferService.Create(&req, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List handles GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	var req transfer.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	transfers, total, err := h.transferService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, transfers, response.NewPagination(req.Page, req.Limit, total))
}

// Get handles GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	t, err := h.transferService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// transferActionRequest is the body of POST /transfers/:id/action. Only the
// fields relevant to the named action are read.
type transferActionRequest struct {
	Action string                        `json:"action" binding:"required"`
	Items  []transfer.ReceiveItemRequest `json:"items"`  // receive
	Notes  string                        `json:"notes"`  // receive
	Reason string                        `json:"reason"` // cancel
}

// Action handles POST /transfers/:id/action
func (h *TransferHandler) Action(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transferActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	if err := h.authorize(actor, req.Action); err != nil {
		response.Error(c, err)
		return
	}

	var (
		t   *transfer.Transfer
		err error
	)
	switch req.Action {
	case "approve":
		t, err = h.transferService.Approve(id, actor.ID)
	case "dispatch":
		t, err = h.transferService.Dispatch(id, actor.ID)
	case "mark_in_transit":
		t, err = h.transferService.MarkInTransit(id, actor.ID)
	case "receive":
		// The receiving branch receives its own shipment
		existing, getErr := h.transferService.Get(id)
		if getErr != nil {
			response.Error(c, getErr)
			return
		}
		if !actor.IsHeadOffice() && existing.ToBranchID != actor.BranchID {
			response.Error(c, apperrors.NewForbidden("only the receiving branch may receive transfer %d", id))
			return
		}
		t, err = h.transferService.Receive(id, &transfer.ReceiveRequest{Items: req.Items, Notes: req.Notes}, actor.ID)
	case "cancel":
		t, err = h.transferService.Cancel(id, &transfer.CancelRequest{Reason: req.Reason}, actor.ID)
	default:
		response.Error(c, apperrors.NewValidation("unknown transfer action '%s'", req.Action))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

func (h *TransferHandler) authorize(actor policy.Actor, action string) error {
	br, err := h.branchService.Get(actor.BranchID)
	if err != nil {
		return err
	}
	return policy.Authorize(actor, br, policy.WorkflowTransfer, action)
}
