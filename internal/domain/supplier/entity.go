// internal/domain/supplier/entity.go
package supplier

import (
	"time"

	"gorm.io/gorm"
)

// Supplier is a reference entity consumed by the purchase workflow as a lookup
type Supplier struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:100" json:"name"`
	Code          string         `gorm:"uniqueIndex;not null;size:20" json:"code"`
	ContactPerson string         `gorm:"size:100" json:"contact_person"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Email         string         `gorm:"size:100" json:"email"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Supplier) TableName() string { return "suppliers" }
