// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed caller input. The caller can
// fix and resubmit; the server never retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError with a formatted message
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports an operation that would drive a branch
// stock entry negative. It is surfaced verbatim, never clamped.
type InsufficientStockError struct {
	ProductID  uint
	VariantSKU string
	BranchID   uint
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	if e.VariantSKU != "" {
		return fmt.Sprintf("insufficient stock for product %d (%s) at branch %d: available %d, requested %d",
			e.ProductID, e.VariantSKU, e.BranchID, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %d at branch %d: available %d, requested %d",
		e.ProductID, e.BranchID, e.Available, e.Requested)
}

// InvalidStateTransitionError reports an action that is not legal from the
// document's current status.
type InvalidStateTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status '%s'", e.Action, e.Entity, e.From)
}

// ForbiddenError reports a role/branch mismatch for the attempted action.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbidden creates a ForbiddenError with a formatted message
func NewForbidden(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown id
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a concurrent modification detected by the per-key
// lock's optimistic check. Safe for the caller to retry the whole action once.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsInsufficientStock reports whether err is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsInvalidStateTransition reports whether err is an InvalidStateTransitionError
func IsInvalidStateTransition(err error) bool {
	var target *InvalidStateTransitionError
	return errors.As(err, &target)
}

// IsForbidden reports whether err is a ForbiddenError
func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
