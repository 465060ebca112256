// internal/domain/stockrequest/service_test.go
package stockrequest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/transfer"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(
		&stock.StockMovement{},
		&stock.StockEntry{},
		&transfer.Transfer{},
		&transfer.TransferItem{},
		&transfer.TransferStatusHistory{},
		&StockRequest{},
		&StockRequestItem{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	transfers := transfer.NewService(db, cfg, stock.NewLedger(db, cfg))
	return NewService(db, cfg, transfers), db
}

func TestCreatePriority(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("defaults to normal", func(t *testing.T) {
		created, err := svc.Create(&CreateRequest{
			Items: []CreateItemRequest{{ProductID: 1, Quantity: 5}},
		}, 2, 7)
		require.NoError(t, err)
		assert.Equal(t, PriorityNormal, created.Priority)
	})

	t.Run("keeps a valid level", func(t *testing.T) {
		created, err := svc.Create(&CreateRequest{
			Items:    []CreateItemRequest{{ProductID: 1, Quantity: 5}},
			Priority: PriorityUrgent,
		}, 2, 7)
		require.NoError(t, err)
		assert.Equal(t, PriorityUrgent, created.Priority)
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		_, err := svc.Create(&CreateRequest{
			Items:    []CreateItemRequest{{ProductID: 1, Quantity: 5}},
			Priority: Priority("critical"),
		}, 2, 7)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("filters the list", func(t *testing.T) {
		urgent, _, err := svc.List(&ListRequest{Priority: "urgent"})
		require.NoError(t, err)
		require.Len(t, urgent, 1)
		assert.Equal(t, PriorityUrgent, urgent[0].Priority)

		low, _, err := svc.List(&ListRequest{Priority: "low"})
		require.NoError(t, err)
		assert.Empty(t, low)
	})
}

func TestFulfillCreatesOneTransfer(t *testing.T) {
	svc, db := newTestService(t)

	created, err := svc.Create(&CreateRequest{
		Items: []CreateItemRequest{
			{ProductID: 1, Quantity: 20},
			{ProductID: 2, Quantity: 10},
		},
		Priority: PriorityHigh,
	}, 2, 7)
	require.NoError(t, err)
	assert.Regexp(t, `^REQ-\d{8}-\d{5}$`, created.RequestNumber)

	var firstItem, secondItem StockRequestItem
	for _, item := range created.Items {
		if item.ProductID == 1 {
			firstItem = item
		} else {
			secondItem = item
		}
	}

	// Head office caps the first line; the omitted second line approves in full
	approved, err := svc.Approve(created.ID, &ApproveRequest{
		Items: []ApproveItemRequest{{ItemID: firstItem.ID, QuantityApproved: 15}},
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	// Shipping above the approved quantity aborts without creating a transfer
	_, err = svc.Fulfill(created.ID, &FulfillRequest{
		FromBranchID: 1,
		Items:        []FulfillItemRequest{{ItemID: firstItem.ID, QuantityFulfilled: 16}},
	}, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	var transferCount int64
	require.NoError(t, db.Model(&transfer.Transfer{}).Count(&transferCount).Error)
	assert.Zero(t, transferCount)

	// The omitted first line ships its approved quantity; the second is short
	result, err := svc.Fulfill(created.ID, &FulfillRequest{
		FromBranchID: 1,
		Items:        []FulfillItemRequest{{ItemID: secondItem.ID, QuantityFulfilled: 6, CartonNumber: "C-12"}},
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, StatusPartialFulfilled, result.Request.Status)
	require.NotNil(t, result.Request.TransferID)
	require.NotNil(t, result.Request.FulfillingBranchID)
	assert.Equal(t, uint(1), *result.Request.FulfillingBranchID)
	require.NotNil(t, result.Request.FulfilledAt)

	require.NotNil(t, result.Transfer)
	assert.Equal(t, *result.Request.TransferID, result.Transfer.ID)
	assert.Equal(t, transfer.StatusDraft, result.Transfer.Status)
	assert.Equal(t, uint(1), result.Transfer.FromBranchID)
	assert.Equal(t, uint(2), result.Transfer.ToBranchID)

	shipped := make(map[uint]transfer.TransferItem, len(result.Transfer.Items))
	for _, item := range result.Transfer.Items {
		shipped[item.ProductID] = item
	}
	require.Len(t, shipped, 2)
	assert.Equal(t, 15, shipped[1].Quantity)
	assert.Equal(t, 6, shipped[2].Quantity)
	assert.Equal(t, "C-12", shipped[2].CartonNumber)

	require.NoError(t, db.Model(&transfer.Transfer{}).Count(&transferCount).Error)
	assert.Equal(t, int64(1), transferCount)

	// partial_fulfilled is terminal; a second fulfillment is rejected
	_, err = svc.Fulfill(created.ID, &FulfillRequest{FromBranchID: 1}, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidStateTransition(err))
	require.NoError(t, db.Model(&transfer.Transfer{}).Count(&transferCount).Error)
	assert.Equal(t, int64(1), transferCount)
}

func TestFulfillValidatesSender(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(&CreateRequest{
		Items: []CreateItemRequest{{ProductID: 1, Quantity: 5}},
	}, 2, 7)
	require.NoError(t, err)
	_, err = svc.Approve(created.ID, &ApproveRequest{}, 3)
	require.NoError(t, err)

	_, err = svc.Fulfill(created.ID, &FulfillRequest{FromBranchID: 0}, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Fulfill(created.ID, &FulfillRequest{FromBranchID: 2}, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
