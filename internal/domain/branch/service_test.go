// internal/domain/branch/service_test.go
package branch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
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
	require.NoError(t, db.AutoMigrate(&Branch{}))
	return NewService(db, &config.Config{})
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(&CreateBranchRequest{Name: "Gulshan Outlet", Code: "GUL"})
	require.NoError(t, err)

	_, err = svc.Create(&CreateBranchRequest{Name: "Gulshan Two", Code: "GUL"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestHeadOffice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.HeadOffice()
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Create(&CreateBranchRequest{Name: "Gulshan Outlet", Code: "GUL"})
	require.NoError(t, err)
	ho, err := svc.Create(&CreateBranchRequest{Name: "Head Office", Code: "HO", Role: RoleHeadOffice})
	require.NoError(t, err)

	found, err := svc.HeadOffice()
	require.NoError(t, err)
	assert.Equal(t, ho.ID, found.ID)
	assert.Equal(t, RoleHeadOffice, found.Role)
}
