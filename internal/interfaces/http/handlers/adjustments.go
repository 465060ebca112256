// internal/interfaces/http/handlers/adjustments.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/finance"
	"github.com/your-org/retail-backend/internal/domain/policy"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// AdjustmentHandler handles manual stock adjustment endpoints
type AdjustmentHandler struct {
	engine        *stock.AdjustmentEngine
	ledger        *stock.Ledger
	branchService *branch.Service
	config        *config.Config
}

// NewAdjustmentHandler creates a new adjustment handler
func NewAdjustmentHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *AdjustmentHandler {
	ledger := stock.NewLedger(db, cfg)

	// Avoid a typed-nil Poster when finance is not configured
	var poster finance.Poster
	if client := finance.NewClient(cfg); client != nil {
		poster = client
	}

	return &AdjustmentHandler{
		engine:        stock.NewAdjustmentEngine(db, cfg, ledger, poster, logger),
		ledger:        ledger,
		branchService: branch.NewService(db, cfg),
		config:        cfg,
	}
}

// Create handles POST /adjustments
func (h *AdjustmentHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req stock.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	br, err := h.branchService.Get(actor.BranchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := policy.Authorize(actor, br, policy.WorkflowAdjustment, "create"); err != nil {
		response.Error(c, err)
		return
	}

	// Sub-branch actors may only adjust their own branch
	if !actor.IsHeadOffice() && req.BranchID != actor.BranchID {
		response.Error(c, apperrors.NewForbidden("sub-branch may only adjust its own stock"))
		return
	}

	// The decrease-only rule for sub-branch 'set' reads the current quantity
	// outside the ledger lock; the ledger itself stays role-agnostic
	if req.Mode == stock.AdjustmentModeSet {
		current := 0
		entry, err := h.ledger.Entry(stock.Key{ProductID: req.ProductID, VariantSKU: req.VariantSKU, BranchID: req.BranchID})
		if err == nil {
			current = entry.Quantity
		} else if !apperrors.IsNotFound(err) {
			response.Error(c, err)
			return
		}
		if err := policy.CanSetAbsolute(actor, current, req.Quantity); err != nil {
			response.Error(c, err)
			return
		}
	}

	result, err := h.engine.Apply(c.Request.Context(), &req, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Warning != "" {
		response.OKWithMessage(c, result.Adjustment, result.Warning)
		return
	}
	response.Created(c, result.Adjustment)
}

// List handles GET /adjustments
func (h *AdjustmentHandler) List(c *gin.Context) {
	var req stock.AdjustmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	adjustments, total, err := h.engine.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, adjustments, response.NewPagination(req.Page, req.Limit, total))
}

// Get handles GET /adjustments/:id
func (h *AdjustmentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	adj, err := h.engine.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, adj)
}
