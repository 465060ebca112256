// internal/domain/transfer/service_test.go
package transfer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/stock"
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
		&Transfer{},
		&TransferItem{},
		&TransferStatusHistory{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *stock.Ledger) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	ledger := stock.NewLedger(db, cfg)
	return NewService(db, cfg, ledger), ledger
}

func seedStock(t *testing.T, ledger *stock.Ledger, productID, branchID uint, quantity int) {
	t.Helper()
	_, err := ledger.Append(&stock.MovementInput{
		Key:      stock.Key{ProductID: productID, BranchID: branchID},
		Type:     stock.MovementTypeInitial,
		Quantity: quantity,
		ActorID:  1,
	})
	require.NoError(t, err)
}

func TestDispatchAllOrNothing(t *testing.T) {
	svc, ledger := newTestService(t)
	seedStock(t, ledger, 1, 1, 10)
	seedStock(t, ledger, 2, 1, 5)

	created, err := svc.Create(&CreateTransferRequest{
		FromBranchID: 1,
		ToBranchID:   2,
		Items: []TransferItemRequest{
			{ProductID: 1, Quantity: 4},
			{ProductID: 2, Quantity: 5},
		},
	}, 7)
	require.NoError(t, err)

	_, err = svc.Approve(created.ID, 7)
	require.NoError(t, err)

	// Stock drained between approve and dispatch; the second line no longer fits
	_, err = ledger.Append(&stock.MovementInput{
		Key:      stock.Key{ProductID: 2, BranchID: 1},
		Type:     stock.MovementTypeAdjustment,
		Quantity: -3,
		ActorID:  1,
		Reason:   "damaged",
	})
	require.NoError(t, err)

	_, err = svc.Dispatch(created.ID, 7)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	// Nothing moved: the first line's deduction rolled back with the rest
	reloaded, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reloaded.Status)
	assert.Nil(t, reloaded.DispatchedAt)

	entry, err := ledger.Entry(stock.Key{ProductID: 1, BranchID: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Quantity)

	_, total, err := ledger.Movements(&stock.MovementListRequest{Type: stock.MovementTypeTransferOut})
	require.NoError(t, err)
	assert.Zero(t, total)

	// Restocked, dispatch goes through and deducts every line at the sender
	_, err = ledger.Append(&stock.MovementInput{
		Key:      stock.Key{ProductID: 2, BranchID: 1},
		Type:     stock.MovementTypeAdjustment,
		Quantity: 3,
		ActorID:  1,
		Reason:   "recovered",
	})
	require.NoError(t, err)

	dispatched, err := svc.Dispatch(created.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, dispatched.Status)
	require.NotNil(t, dispatched.DispatchedAt)

	entry, err = ledger.Entry(stock.Key{ProductID: 1, BranchID: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, entry.Quantity)
	entry, err = ledger.Entry(stock.Key{ProductID: 2, BranchID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Quantity)
}

func TestReceivePartial(t *testing.T) {
	svc, ledger := newTestService(t)
	seedStock(t, ledger, 1, 1, 10)
	seedStock(t, ledger, 2, 1, 5)

	created, err := svc.Create(&CreateTransferRequest{
		FromBranchID: 1,
		ToBranchID:   2,
		Items: []TransferItemRequest{
			{ProductID: 1, Quantity: 4},
			{ProductID: 2, Quantity: 5},
		},
	}, 7)
	require.NoError(t, err)
	_, err = svc.Approve(created.ID, 7)
	require.NoError(t, err)
	_, err = svc.Dispatch(created.ID, 7)
	require.NoError(t, err)
	inTransit, err := svc.MarkInTransit(created.ID, 7)
	require.NoError(t, err)

	var firstItem, secondItem TransferItem
	for _, item := range inTransit.Items {
		if item.ProductID == 1 {
			firstItem = item
		} else {
			secondItem = item
		}
	}

	// Receiving more than was dispatched is rejected before anything posts
	_, err = svc.Receive(created.ID, &ReceiveRequest{
		Items: []ReceiveItemRequest{{ItemID: firstItem.ID, QuantityReceived: 7}},
	}, 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// The omitted first line receives in full; the overridden second line
	// arrives empty and posts no movement
	received, err := svc.Receive(created.ID, &ReceiveRequest{
		Items: []ReceiveItemRequest{{ItemID: secondItem.ID, QuantityReceived: 0}},
		Notes: "one carton missing",
	}, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusPartialReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	require.NotNil(t, received.ReceivedBy)
	assert.Equal(t, uint(9), *received.ReceivedBy)
	receivedByItem := make(map[uint]int, len(received.Items))
	for _, item := range received.Items {
		receivedByItem[item.ID] = item.QuantityReceived
	}
	assert.Equal(t, 4, receivedByItem[firstItem.ID])
	assert.Equal(t, 0, receivedByItem[secondItem.ID])

	entry, err := ledger.Entry(stock.Key{ProductID: 1, BranchID: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, entry.Quantity)

	_, err = ledger.Entry(stock.Key{ProductID: 2, BranchID: 2})
	assert.True(t, apperrors.IsNotFound(err))

	_, total, err := ledger.Movements(&stock.MovementListRequest{Type: stock.MovementTypeTransferIn})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// partial_received is terminal
	_, err = svc.Receive(created.ID, &ReceiveRequest{}, 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidStateTransition(err))
}

func TestReceiveInFull(t *testing.T) {
	svc, ledger := newTestService(t)
	seedStock(t, ledger, 1, 1, 10)

	created, err := svc.Create(&CreateTransferRequest{
		FromBranchID: 1,
		ToBranchID:   2,
		Items:        []TransferItemRequest{{ProductID: 1, Quantity: 10}},
	}, 7)
	require.NoError(t, err)
	_, err = svc.Approve(created.ID, 7)
	require.NoError(t, err)
	_, err = svc.Dispatch(created.ID, 7)
	require.NoError(t, err)
	_, err = svc.MarkInTransit(created.ID, 7)
	require.NoError(t, err)

	received, err := svc.Receive(created.ID, &ReceiveRequest{}, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, received.Status)

	entry, err := ledger.Entry(stock.Key{ProductID: 1, BranchID: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Quantity)
}
