// internal/domain/policy/policy.go
package policy

import (
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
)

// Actor is the authenticated caller as carried by the JWT claims
type Actor struct {
	ID       uint
	Email    string
	BranchID uint
	Role     branch.Role
}

// IsHeadOffice reports whether the actor belongs to the head office
func (a Actor) IsHeadOffice() bool {
	return a.Role == branch.RoleHeadOffice
}

// Workflow names used for permission evaluation
const (
	WorkflowPurchase   = "purchase"
	WorkflowTransfer   = "transfer"
	WorkflowRequest    = "request"
	WorkflowAdjustment = "adjustment"
)

// Authorize evaluates the head-office / sub-branch gate for one workflow
// action. This is the single place the role rules live; workflows call it
// instead of repeating the check.
//
// Rules:
//   - purchase: every action is head-office only
//   - transfer: create/approve/dispatch/mark_in_transit/cancel are head-office
//     only; receive is open (the service checks the actor belongs to the
//     receiving branch)
//   - request: create/cancel are sub-branch only; approve/reject/fulfill are
//     head-office only
//   - adjustment: open to both roles; the decrease-only rule for sub-branch
//     'set' is evaluated separately via CanSetAbsolute
func Authorize(actor Actor, br *branch.Branch, workflow, action string) error {
	// The directory record wins over the token's claimed role
	if br != nil && br.Role != actor.Role {
		return apperrors.NewForbidden("branch role mismatch for actor %d", actor.ID)
	}

	switch workflow {
	case WorkflowPurchase:
		if !actor.IsHeadOffice() {
			return apperrors.NewForbidden("only head office may %s purchases", action)
		}
	case WorkflowTransfer:
		if action != "receive" && !actor.IsHeadOffice() {
			return apperrors.NewForbidden("only head office may %s transfers", action)
		}
	case WorkflowRequest:
		switch action {
		case "create", "cancel":
			if actor.IsHeadOffice() {
				return apperrors.NewForbidden("only sub-branches may %s stock requests", action)
			}
		case "approve", "reject", "fulfill":
			if !actor.IsHeadOffice() {
				return apperrors.NewForbidden("only head office may %s stock requests", action)
			}
		}
	case WorkflowAdjustment:
		// Both roles may adjust; mode-specific limits apply via CanSetAbsolute
	default:
		return apperrors.NewForbidden("unknown workflow '%s'", workflow)
	}

	return nil
}

// CanSetAbsolute evaluates the 'set' adjustment limit: a sub-branch actor may
// only set to a value at or below current stock, head office to any
// non-negative value.
func CanSetAbsolute(actor Actor, current, target int) error {
	if actor.IsHeadOffice() {
		return nil
	}
	if target > current {
		return apperrors.NewForbidden("sub-branch may only set stock to %d or less (current %d)", current, current)
	}
	return nil
}
