// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/retail-backend/internal/domain/branch"
	"github.com/your-org/retail-backend/internal/domain/purchase"
	"github.com/your-org/retail-backend/internal/domain/stock"
	"github.com/your-org/retail-backend/internal/domain/stockrequest"
	"github.com/your-org/retail-backend/internal/domain/supplier"
	"github.com/your-org/retail-backend/internal/domain/transfer"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// Directory tables
		&branch.Branch{},
		&supplier.Supplier{},

		// Ledger tables
		&stock.StockEntry{},
		&stock.StockMovement{},
		&stock.Adjustment{},

		// Purchase workflow
		&purchase.Purchase{},
		&purchase.PurchaseItem{},

		// Transfer workflow
		&transfer.Transfer{},
		&transfer.TransferItem{},
		&transfer.TransferStatusHistory{},

		// Stock request workflow
		&stockrequest.StockRequest{},
		&stockrequest.StockRequestItem{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("Creating additional database indexes...")

	indexes := []string{
		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference_kind, reference_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_branch_created ON stock_movements(branch_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_entries_low ON stock_entries(branch_id, quantity)",

		// Purchase indexes
		"CREATE INDEX IF NOT EXISTS idx_purchases_status_created ON purchases(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_payment_status ON purchases(payment_status)",

		// Transfer indexes
		"CREATE INDEX IF NOT EXISTS idx_transfers_status_created ON transfers(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_branches ON transfers(from_branch_id, to_branch_id)",

		// Stock request indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_requests_status_created ON stock_requests(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_requests_branch ON stock_requests(branch_id, status)",

		// Adjustment indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_branch_created ON stock_adjustments(branch_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("Database indexes created successfully")
	return nil
}

// SeedInitialData seeds the branch directory for development environments
func (m *Migration) SeedInitialData() error {
	log.Println("Seeding initial data...")

	var count int64
	if err := m.db.Model(&branch.Branch{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count branches: %w", err)
	}
	if count > 0 {
		log.Println("Branches already seeded, skipping")
		return nil
	}

	branches := []branch.Branch{
		{
			Name:     "Head Office",
			Code:     "HO",
			Role:     branch.RoleHeadOffice,
			City:     "Dhaka",
			IsActive: true,
		},
		{
			Name:     "Gulshan Outlet",
			Code:     "GUL",
			Role:     branch.RoleSubBranch,
			City:     "Dhaka",
			IsActive: true,
		},
	}
	for i := range branches {
		if err := m.db.Create(&branches[i]).Error; err != nil {
			return fmt.Errorf("failed to seed branch %s: %w", branches[i].Code, err)
		}
	}

	log.Println("Initial data seeded successfully")
	return nil
}
