// internal/pkg/response/response.go
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
)

// Envelope is the wire format for every API response
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the position of a list response within the full result set
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPagination computes pagination info for a page/limit/total triple
func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// OK writes a 200 response with data
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// OKWithMessage writes a 200 response with data and a message. Used for
// results that carry a non-fatal warning (e.g. best-effort expense posting).
func OKWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes a 201 response with data
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// List writes a 200 response with a paginated collection
func List(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &pagination})
}

// Error writes an error response with the status implied by the error type
func Error(c *gin.Context, err error) {
	c.JSON(statusCode(err), Envelope{Success: false, Message: err.Error()})
}

// statusCode maps the error taxonomy to HTTP status codes
func statusCode(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsInsufficientStock(err):
		return http.StatusUnprocessableEntity
	case apperrors.IsInvalidStateTransition(err):
		return http.StatusConflict
	case apperrors.IsForbidden(err):
		return http.StatusForbidden
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
