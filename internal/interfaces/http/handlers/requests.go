// internal/interfaces/http/handlers/requests.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/policy"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/stockrequest"
	"github.com/your-org/retail-backend/internal/domain/transfer"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// StockRequestHandler handles stock request workflow endpoints
type StockRequestHandler struct {
	requestService *stockrequest.Service
	branchService  *branch.Service
	config         *config.Config
}

// NewStockRequestHandler creates a new stock request handler
func NewStockRequestHandler(db *gorm.DB, cfg *config.Config) *StockRequestHandler {
	ledger := stock.NewLedger(db, cfg)
	transferService := transfer.NewService(db, cfg, ledger)
	return &StockRequestHandler{
		requestService: stockrequest.NewService(db, cfg, transferService),
		branchService:  branch.NewService(db, cfg),
		config:         cfg,
	}
}

// Create handles POST /stock-requests
func (h *StockRequestHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.authorize(actor, "create"); err != nil {
		response.Error(c, err)
		return
	}

	var req stockrequest.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	// A request always replenishes the requester's own branch
	created, err := h.requestService.Create(&req, actor.BranchID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List handles GET /stock-requests
func (h *StockRequestHandler) List(c *gin.Context) {
	var req stockrequest.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	requests, total, err := h.requestService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, requests, response.NewPagination(req.Page, req.Limit, total))
}

// Get handles GET /stock-requests/:id
func (h *StockRequestHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	r, err := h.requestService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// requestActionRequest is the body of POST /stock-requests/:id/action. Only
// the fields relevant to the named action are read.
type requestActionRequest struct {
	Action string `json:"action" binding:"required"`

	// approve
	ApproveItems []stockrequest.ApproveItemRequest `json:"approve_items"`
	Notes        string                            `json:"notes"`

	// reject
	Reason string `json:"reason"`

	// fulfill
	FromBranchID  uint                              `json:"from_branch_id"`
	FulfillItems  []stockrequest.FulfillItemRequest `json:"fulfill_items"`
	VehicleNumber string                            `json:"vehicle_number"`
	DriverName    string                            `json:"driver_name"`
	DriverPhone   string                            `json:"driver_phone"`
}

// Action handles POST /stock-requests/:id/action
func (h *StockRequestHandler) Action(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req requestActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	if err := h.authorize(actor, req.Action); err != nil {
		response.Error(c, err)
		return
	}

	switch req.Action {
	case "approve":
		r, err := h.requestService.Approve(id, &stockrequest.ApproveRequest{Items: req.ApproveItems, Notes: req.Notes}, actor.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, r)
	case "reject":
		r, err := h.requestService.Reject(id, &stockrequest.RejectRequest{Reason: req.Reason}, actor.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, r)
	case "cancel":
		r, err := h.requestService.Cancel(id, actor.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, r)
	case "fulfill":
		fromBranchID := req.FromBranchID
		if fromBranchID == 0 {
			// Fulfillment normally ships from the head office
			ho, err := h.branchService.HeadOffice()
			if err != nil {
				response.Error(c, err)
				return
			}
			fromBranchID = ho.ID
		}
		result, err := h.requestService.Fulfill(id, &stockrequest.FulfillRequest{
			FromBranchID:  fromBranchID,
			Items:         req.FulfillItems,
			VehicleNumber: req.VehicleNumber,
			DriverName:    req.DriverName,
			DriverPhone:   req.DriverPhone,
			Notes:         req.Notes,
		}, actor.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, result)
	default:
		response.Error(c, apperrors.NewValidation("unknown stock request action '%s'", req.Action))
	}
}

func (h *StockRequestHandler) authorize(actor policy.Actor, action string) error {
	br, err := h.branchService.Get(actor.BranchID)
	if err != nil {
		return err
	}
	return policy.Authorize(actor, br, policy.WorkflowRequest, action)
}
