// internal/interfaces/http/handlers/branches.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/policy"
	"github.com/your-org/retail-backend/internal/interfaces/http/middleware"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// BranchHandler handles branch directory endpoints
type BranchHandler struct {
	branchService *branch.Service
	config        *config.Config
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(db *gorm.DB, cfg *config.Config) *BranchHandler {
	return &BranchHandler{
		branchService: branch.NewService(db, cfg),
		config:        cfg,
	}
}

// Create handles POST /branches
func (h *BranchHandler) Create(c *gin.Context) {
	var req branch.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	created, err := h.branchService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List handles GET /branches
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branchService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, branches)
}

// Get handles GET /branches/:id
func (h *BranchHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	br, err := h.branchService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, br)
}

// parseIDParam parses the :id path parameter, writing the error response on
// failure
func parseIDParam(c *gin.Context) (uint, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Envelope{Success: false, Message: "invalid id parameter"})
		return 0, false
	}
	return uint(id), true
}

// requireActor extracts the authenticated actor, writing the error response
// when the auth middleware did not run
func requireActor(c *gin.Context) (policy.Actor, bool) {
	actor, exists := middleware.GetActorFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, response.Envelope{Success: false, Message: "authentication required"})
		return policy.Actor{}, false
	}
	return actor, true
}
