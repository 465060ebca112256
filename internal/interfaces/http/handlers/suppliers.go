// internal/interfaces/http/handlers/suppliers.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/supplier"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// SupplierHandler handles supplier directory endpoints
type SupplierHandler struct {
	supplierService *supplier.Service
	config          *config.Config
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(db *gorm.DB, cfg *config.Config) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplier.NewService(db, cfg),
		config:          cfg,
	}
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req supplier.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	created, err := h.supplierService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.supplierService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, suppliers)
}

// Get handles GET /suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	s, err := h.supplierService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}
