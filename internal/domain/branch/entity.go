// internal/domain/branch/entity.go
package branch

import (
	"time"

	"gorm.io/gorm"
)

// Role distinguishes the head office from sub-branches. The head office
// purchases from suppliers and approves/fulfills stock requests; sub-branches
// request replenishment and receive transfers.
type Role string

const (
	RoleHeadOffice Role = "head_office"
	RoleSubBranch  Role = "sub_branch"
)

// Branch represents a physical retail location
type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:100" json:"name"`
	Code      string         `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Role      Role           `gorm:"not null;default:'sub_branch'" json:"role"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"size:50" json:"city"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Branch) TableName() string { return "branches" }

// IsHeadOffice reports whether this branch carries the head office role
func (b *Branch) IsHeadOffice() bool {
	return b.Role == RoleHeadOffice
}
