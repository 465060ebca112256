// internal/domain/policy/policy_test.go
package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
)

func headOffice() Actor {
	return Actor{ID: 1, BranchID: 1, Role: branch.RoleHeadOffice}
}

func subBranch() Actor {
	return Actor{ID: 2, BranchID: 5, Role: branch.RoleSubBranch}
}

func TestAuthorizePurchase(t *testing.T) {
	for _, action := range []string{"create", "approve", "receive", "pay", "cancel"} {
		assert.NoError(t, Authorize(headOffice(), nil, WorkflowPurchase, action), action)
		assert.True(t, apperrors.IsForbidden(Authorize(subBranch(), nil, WorkflowPurchase, action)), action)
	}
}

func TestAuthorizeTransfer(t *testing.T) {
	for _, action := range []string{"create", "approve", "dispatch", "mark_in_transit", "cancel"} {
		assert.NoError(t, Authorize(headOffice(), nil, WorkflowTransfer, action), action)
		assert.True(t, apperrors.IsForbidden(Authorize(subBranch(), nil, WorkflowTransfer, action)), action)
	}

	// Receive is open to the sub-branch at the receiving end
	assert.NoError(t, Authorize(subBranch(), nil, WorkflowTransfer, "receive"))
	assert.NoError(t, Authorize(headOffice(), nil, WorkflowTransfer, "receive"))
}

func TestAuthorizeRequest(t *testing.T) {
	for _, action := range []string{"create", "cancel"} {
		assert.NoError(t, Authorize(subBranch(), nil, WorkflowRequest, action), action)
		assert.True(t, apperrors.IsForbidden(Authorize(headOffice(), nil, WorkflowRequest, action)), action)
	}
	for _, action := range []string{"approve", "reject", "fulfill"} {
		assert.NoError(t, Authorize(headOffice(), nil, WorkflowRequest, action), action)
		assert.True(t, apperrors.IsForbidden(Authorize(subBranch(), nil, WorkflowRequest, action)), action)
	}
}

func TestAuthorizeAdjustment(t *testing.T) {
	assert.NoError(t, Authorize(headOffice(), nil, WorkflowAdjustment, "create"))
	assert.NoError(t, Authorize(subBranch(), nil, WorkflowAdjustment, "create"))
}

func TestAuthorizeUnknownWorkflow(t *testing.T) {
	assert.True(t, apperrors.IsForbidden(Authorize(headOffice(), nil, "reporting", "create")))
}

func TestAuthorizeBranchRoleMismatch(t *testing.T) {
	// The directory record wins when the token claims a different role
	record := &branch.Branch{ID: 5, Role: branch.RoleSubBranch}
	forged := Actor{ID: 9, BranchID: 5, Role: branch.RoleHeadOffice}
	assert.True(t, apperrors.IsForbidden(Authorize(forged, record, WorkflowPurchase, "create")))
}

func TestCanSetAbsolute(t *testing.T) {
	// Head office may set to any non-negative value
	assert.NoError(t, CanSetAbsolute(headOffice(), 10, 500))
	assert.NoError(t, CanSetAbsolute(headOffice(), 10, 0))

	// Sub-branch is decrease-only
	assert.NoError(t, CanSetAbsolute(subBranch(), 10, 10))
	assert.NoError(t, CanSetAbsolute(subBranch(), 10, 3))
	assert.True(t, apperrors.IsForbidden(CanSetAbsolute(subBranch(), 10, 11)))
}
