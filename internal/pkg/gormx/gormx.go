// internal/pkg/gormx/gormx.go
package gormx

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RowLock adds SELECT ... FOR UPDATE on dialects that support it. SQLite
// rejects the clause and serializes writers on its own, so it is skipped
// there; the in-memory test databases rely on that.
func RowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
