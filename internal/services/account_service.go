package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	"github.com/lenskyphoto/studio-backend/pkg/crypto"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("account service: user not found")
	// ErrEmailInUse signals that the email is already registered.
	ErrEmailInUse = errors.New("account service: email already registered")
	// ErrUsernameInUse signals that the username is already registered.
	ErrUsernameInUse = errors.New("account service: username already registered")
)

// RegisterOwnerInput captures the attributes for owner self-registration.
type RegisterOwnerInput struct {
	Username string
	Email    string
	Password string
}

// AccountService manages user records and credential verification.
type AccountService struct {
	db     *gorm.DB
	policy *policy.Evaluator
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB, eval *policy.Evaluator) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}
	if eval == nil {
		return nil, errors.New("account service: policy evaluator is required")
	}
	return &AccountService{db: db, policy: eval}, nil
}

// RegisterOwner creates a studio owner account. Owners register themselves;
// every other role arrives through an invitation.
func (s *AccountService) RegisterOwner(ctx context.Context, input RegisterOwnerInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, apperrors.NewBadRequest("username and email are required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleOwner,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("account service: create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a username/password pair.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("account service: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// GetByID loads a user by primary key.
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: get user: %w", err)
	}
	return &user, nil
}

// FindByEmail returns the user with the given email, or nil when absent.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account service: find by email: %w", err)
	}
	return &user, nil
}

// ListCompanyUsers returns the members of the actor's company.
func (s *AccountService) ListCompanyUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return nil, apperrors.NewBadRequest("user must belong to a company")
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: actor.CompanyID}, policy.ActionListUsers) {
		return nil, apperrors.ErrForbidden
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", *actor.CompanyID).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("account service: list users: %w", err)
	}
	return users, nil
}
