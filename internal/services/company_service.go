package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
)

// ErrCompanyNotFound indicates the requested company does not exist.
var ErrCompanyNotFound = errors.New("company service: company not found")

// CreateCompanyInput captures the attributes required to register a company.
type CreateCompanyInput struct {
	Name     string
	Settings map[string]any
}

// CompanyService manages the tenant records everything else hangs off.
type CompanyService struct {
	db     *gorm.DB
	policy *policy.Evaluator
}

// NewCompanyService constructs a CompanyService instance.
func NewCompanyService(db *gorm.DB, eval *policy.Evaluator) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	if eval == nil {
		return nil, errors.New("company service: policy evaluator is required")
	}
	return &CompanyService{db: db, policy: eval}, nil
}

// Create registers a company and points the owning user at it. Both writes
// commit in the same transaction so an owner never ends up owning a company
// they are not a member of.
func (s *CompanyService) Create(ctx context.Context, actor *models.User, input CreateCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	if !s.policy.Allow(actor, policy.Resource{}, policy.ActionCreateCompany) {
		return nil, apperrors.NewForbidden("only owners can create companies")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("company name is required")
	}

	company := &models.Company{
		Name:    name,
		OwnerID: actor.ID,
	}

	if input.Settings != nil {
		data, err := json.Marshal(input.Settings)
		if err != nil {
			return nil, fmt.Errorf("company service: marshal settings: %w", err)
		}
		company.Settings = datatypes.JSON(data)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", actor.ID).
			Update("company_id", company.ID).Error; err != nil {
			return fmt.Errorf("attach owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("company service: %w", err)
	}

	actor.CompanyID = &company.ID
	return company, nil
}

// GetByID loads a company by primary key.
func (s *CompanyService) GetByID(ctx context.Context, id string) (*models.Company, error) {
	ctx = ensureContext(ctx)

	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("company service: get company: %w", err)
	}
	return &company, nil
}
