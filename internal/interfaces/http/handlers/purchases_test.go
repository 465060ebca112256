// internal/interfaces/http/handlers/purchases_test.go
package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/purchase"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/supplier"
	"gorm.io/gorm"
)

func newPurchaseTestDB(t *testing.T) *gorm.DB {
	return newTestDB(t,
		&branch.Branch{},
		&supplier.Supplier{},
		&stock.StockMovement{},
		&stock.StockEntry{},
		&purchase.Purchase{},
		&purchase.PurchaseItem{},
	)
}

func TestPurchaseCreateChecksSupplierDirectory(t *testing.T) {
	db := newPurchaseTestDB(t)
	ho := &branch.Branch{Name: "Head Office", Code: "HO", Role: branch.RoleHeadOffice, IsActive: true}
	require.NoError(t, db.Create(ho).Error)

	handler := NewPurchaseHandler(db, &config.Config{})

	body := map[string]interface{}{
		"supplier_id": 99,
		"branch_id":   ho.ID,
		"items":       []map[string]interface{}{{"product_id": 1, "quantity": 5, "cost_price": 1200}},
	}
	c, w := newActorContext(t, http.MethodPost, "/purchases", body, ho.ID, branch.RoleHeadOffice)
	handler.Create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)

	var count int64
	require.NoError(t, db.Model(&purchase.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPurchaseCreateWithKnownSupplier(t *testing.T) {
	db := newPurchaseTestDB(t)
	ho := &branch.Branch{Name: "Head Office", Code: "HO", Role: branch.RoleHeadOffice, IsActive: true}
	require.NoError(t, db.Create(ho).Error)
	sup := &supplier.Supplier{Name: "Acme Textiles", Code: "ACME", IsActive: true}
	require.NoError(t, db.Create(sup).Error)

	handler := NewPurchaseHandler(db, &config.Config{})

	body := map[string]interface{}{
		"supplier_id": sup.ID,
		"branch_id":   ho.ID,
		"items":       []map[string]interface{}{{"product_id": 1, "quantity": 5, "cost_price": 1200}},
	}
	c, w := newActorContext(t, http.MethodPost, "/purchases", body, ho.ID, branch.RoleHeadOffice)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	var count int64
	require.NoError(t, db.Model(&purchase.Purchase{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
