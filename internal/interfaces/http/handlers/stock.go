// internal/interfaces/http/handlers/stock.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"github.com/your-org/retail-backend/internal/pkg/response"
	"gorm.io/gorm"
)

// StockHandler handles ledger read endpoints and entry maintenance
type StockHandler struct {
	ledger *stock.Ledger
	config *config.Config
}

// NewStockHandler creates a new stock handler
func NewStockHandler(db *gorm.DB, cfg *config.Config) *StockHandler {
	return &StockHandler{
		ledger: stock.NewLedger(db, cfg),
		config: cfg,
	}
}

// ListMovements handles GET /stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	var req stock.MovementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	movements, total, err := h.ledger.Movements(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, movements, response.NewPagination(req.Page, req.Limit, total))
}

// ListEntries handles GET /stock/entries
func (h *StockHandler) ListEntries(c *gin.Context) {
	var req stock.EntryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	entries, total, err := h.ledger.Entries(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, entries, response.NewPagination(req.Page, req.Limit, total))
}

// entryKeyQuery binds the query parameters identifying one stock position
type entryKeyQuery struct {
	ProductID  uint   `form:"product_id" binding:"required"`
	VariantSKU string `form:"variant_sku"`
	BranchID   uint   `form:"branch_id" binding:"required"`
}

func (q *entryKeyQuery) key() stock.Key {
	return stock.Key{ProductID: q.ProductID, VariantSKU: q.VariantSKU, BranchID: q.BranchID}
}

// GetEntry handles GET /stock/entry
func (h *StockHandler) GetEntry(c *gin.Context) {
	var q entryKeyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrors.NewValidation("invalid query parameters: %v", err))
		return
	}

	entry, err := h.ledger.Entry(q.key())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// setReorderPointRequest represents reorder point update data
type setReorderPointRequest struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	VariantSKU   string `json:"variant_sku"`
	BranchID     uint   `json:"branch_id" binding:"required"`
	ReorderPoint int    `json:"reorder_point"`
}

// SetReorderPoint handles PUT /stock/reorder-point
func (h *StockHandler) SetReorderPoint(c *gin.Context) {
	var req setReorderPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	entry, err := h.ledger.SetReorderPoint(stock.Key{
		ProductID:  req.ProductID,
		VariantSKU: req.VariantSKU,
		BranchID:   req.BranchID,
	}, req.ReorderPoint)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// rebuildEntryRequest identifies the stock position to rebuild
type rebuildEntryRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	BranchID   uint   `json:"branch_id" binding:"required"`
}

// RebuildEntry handles POST /stock/rebuild. The entry is derived state;
// rebuilding replays the movement sequence and must land on the cached value.
func (h *StockHandler) RebuildEntry(c *gin.Context) {
	var req rebuildEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidation("invalid request data: %v", err))
		return
	}

	entry, err := h.ledger.RebuildEntry(stock.Key{
		ProductID:  req.ProductID,
		VariantSKU: req.VariantSKU,
		BranchID:   req.BranchID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}
