// internal/domain/branch/service.go
package branch

import (
	"errors"
	"fmt"

	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles branch directory lookups
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new branch service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateBranchRequest represents branch creation data
type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Role    Role   `json:"role"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// Create creates a new branch
func (s *Service) Create(req *CreateBranchRequest) (*Branch, error) {
	role := req.Role
	if role == "" {
		role = RoleSubBranch
	}
	if role != RoleHeadOffice && role != RoleSubBranch {
		return nil, apperrors.NewValidation("invalid branch role '%s'", role)
	}

	var existing Branch
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, apperrors.NewValidation("branch with code '%s' already exists", req.Code)
	}

	b := &Branch{
		Name:     req.Name,
		Code:     req.Code,
		Role:     role,
		Address:  req.Address,
		City:     req.City,
		Phone:    req.Phone,
		IsActive: true,
	}

	if err := s.db.Create(b).Error; err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	return b, nil
}

// List retrieves all active branches
func (s *Service) List() ([]Branch, error) {
	var branches []Branch
	if err := s.db.Where("is_active = ?", true).Order("code").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve branches: %w", err)
	}
	return branches, nil
}

// Get retrieves a single branch by id
func (s *Service) Get(id uint) (*Branch, error) {
	var b Branch
	if err := s.db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "branch", ID: id}
		}
		return nil, fmt.Errorf("failed to retrieve branch: %w", err)
	}
	return &b, nil
}

// HeadOffice retrieves the active head office branch
func (s *Service) HeadOffice() (*Branch, error) {
	var b Branch
	err := s.db.Where("role = ? AND is_active = ?", RoleHeadOffice, true).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Entity: "head office branch"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve head office branch: %w", err)
	}
	return &b, nil
}
