// internal/interfaces/http/handlers/requests_test.go
package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/stockrequest"
	"github.com/your-org/retail-backend/internal/domain/transfer"
	"gorm.io/gorm"
)

func newRequestTestDB(t *testing.T) *gorm.DB {
	return newTestDB(t,
		&branch.Branch{},
		&stock.StockMovement{},
		&stock.StockEntry{},
		&transfer.Transfer{},
		&transfer.TransferItem{},
		&transfer.TransferStatusHistory{},
		&stockrequest.StockRequest{},
		&stockrequest.StockRequestItem{},
	)
}

func TestFulfillDefaultsToHeadOffice(t *testing.T) {
	db := newRequestTestDB(t)
	ho := &branch.Branch{Name: "Head Office", Code: "HO", Role: branch.RoleHeadOffice, IsActive: true}
	require.NoError(t, db.Create(ho).Error)
	sub := &branch.Branch{Name: "Gulshan Outlet", Code: "GUL", Role: branch.RoleSubBranch, IsActive: true}
	require.NoError(t, db.Create(sub).Error)

	cfg := &config.Config{}
	transfers := transfer.NewService(db, cfg, stock.NewLedger(db, cfg))
	requests := stockrequest.NewService(db, cfg, transfers)

	created, err := requests.Create(&stockrequest.CreateRequest{
		Items: []stockrequest.CreateItemRequest{{ProductID: 1, Quantity: 5}},
	}, sub.ID, 7)
	require.NoError(t, err)
	_, err = requests.Approve(created.ID, &stockrequest.ApproveRequest{}, 1)
	require.NoError(t, err)

	handler := NewStockRequestHandler(db, cfg)

	// No from_branch_id in the body: the head office branch is the sender
	c, w := newActorContext(t, http.MethodPost, "/stock-requests/"+strconv.Itoa(int(created.ID))+"/action", map[string]interface{}{
		"action": "fulfill",
	}, ho.ID, branch.RoleHeadOffice)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(created.ID))}}
	handler.Action(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	fulfilled, err := requests.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, stockrequest.StatusFulfilled, fulfilled.Status)
	require.NotNil(t, fulfilled.FulfillingBranchID)
	assert.Equal(t, ho.ID, *fulfilled.FulfillingBranchID)
	require.NotNil(t, fulfilled.TransferID)

	shipment, err := transfers.Get(*fulfilled.TransferID)
	require.NoError(t, err)
	assert.Equal(t, ho.ID, shipment.FromBranchID)
	assert.Equal(t, sub.ID, shipment.ToBranchID)
}
