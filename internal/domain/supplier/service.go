// internal/domain/supplier/service.go
package supplier

import (
	"errors"
	"fmt"

	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles supplier directory lookups
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new supplier service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateSupplierRequest represents supplier creation data
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	Code          string `json:"code" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

// Create creates a new supplier
func (s *Service) Create(req *CreateSupplierRequest) (*Supplier, error) {
	var existing Supplier
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, apperrors.NewValidation("supplier with code '%s' already exists", req.Code)
	}

	sup := &Supplier{
		Name:          req.Name,
		Code:          req.Code,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		IsActive:      true,
	}

	if err := s.db.Create(sup).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	return sup, nil
}

// List retrieves all active suppliers
func (s *Service) List() ([]Supplier, error) {
	var suppliers []Supplier
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve suppliers: %w", err)
	}
	return suppliers, nil
}

// Get retrieves a single supplier by id
func (s *Service) Get(id uint) (*Supplier, error) {
	var sup Supplier
	if err := s.db.First(&sup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "supplier", ID: id}
		}
		return nil, fmt.Errorf("failed to retrieve supplier: %w", err)
	}
	return &sup, nil
}
