package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	"github.com/lenskyphoto/studio-backend/pkg/crypto"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/mail"
)

var (
	// ErrInvitationNotFound indicates no invitation matches the provided token.
	ErrInvitationNotFound = errors.New("invite service: invitation not found")
	// ErrInvitationMismatch signals that the token and email do not belong to the same live invitation.
	ErrInvitationMismatch = errors.New("invite service: token does not match invitation email")
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to build acceptance links.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// InviteService manages the lifecycle of single-use invitation tokens.
type InviteService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	policy  *policy.Evaluator
	baseURL string
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, mailer mail.Mailer, eval *policy.Evaluator, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if eval == nil {
		return nil, errors.New("invite service: policy evaluator is required")
	}

	service := &InviteService{
		db:     db,
		mailer: mailer,
		policy: eval,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Create issues an invitation binding the email to a role. A previous
// invitation to the same email is superseded (deleted) before the new one is
// stored, so at most one invitation per email is ever live.
func (s *InviteService) Create(ctx context.Context, actor *models.User, email string, role models.Role) (*models.Invitation, string, error) {
	ctx = ensureContext(ctx)

	if !s.policy.Allow(actor, policy.Resource{}, policy.ActionInviteUser) {
		return nil, "", apperrors.NewForbidden("only owners can send invitations")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", apperrors.NewBadRequest("email is required")
	}
	if !role.Valid() {
		return nil, "", apperrors.NewBadRequest("unknown role")
	}

	var registered int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&registered).Error; err != nil {
		return nil, "", fmt.Errorf("invite service: check email: %w", err)
	}
	if registered > 0 {
		return nil, "", apperrors.NewBadRequest("email is already registered")
	}

	invitation := &models.Invitation{
		Email:   email,
		Role:    role,
		Token:   uuid.NewString(),
		OwnerID: actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("supersede invitation: %w", err)
		}
		if err := tx.Create(invitation).Error; err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("invite service: %w", err)
	}

	link := s.acceptLink(invitation.Token)

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "You have been invited to join the studio",
			Body:    inviteBody(link),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return nil, "", apperrors.Wrap(mailErr, "failed to send invitation email")
		}
	}

	return invitation, link, nil
}

// Validate looks up a live invitation by token without consuming it.
func (s *InviteService) Validate(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: find invitation: %w", err)
	}

	return &invitation, nil
}

// AcceptInput captures the payload required to consume an invitation.
type AcceptInput struct {
	Token    string
	Email    string
	Username string
	Password string
}

// Accept consumes an invitation and creates the invited user with the
// invitation's role and the inviting owner's company. The user creation and
// the invitation deletion commit in one transaction, so a token is usable at
// most once: a concurrent acceptance observes the deleted row and fails.
func (s *InviteService) Accept(ctx context.Context, input AcceptInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("invite service: hash password: %w", err)
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		findErr := tx.Where("token = ?", strings.TrimSpace(input.Token)).First(&invitation).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		if findErr != nil {
			return fmt.Errorf("find invitation: %w", findErr)
		}

		if invitation.Email != email {
			return ErrInvitationMismatch
		}

		var inviter models.User
		if err := tx.First(&inviter, "id = ?", invitation.OwnerID).Error; err != nil {
			return fmt.Errorf("load inviting owner: %w", err)
		}

		user = &models.User{
			Username:  username,
			Email:     invitation.Email,
			Password:  hash,
			Role:      invitation.Role,
			CompanyID: inviter.CompanyID,
		}
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrUsernameInUse
			}
			return fmt.Errorf("create user: %w", err)
		}

		res := tx.Where("id = ?", invitation.ID).Delete(&models.Invitation{})
		if res.Error != nil {
			return fmt.Errorf("consume invitation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Another acceptance raced us and won.
			return ErrInvitationNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *InviteService) acceptLink(token string) string {
	if s.baseURL == "" {
		return "/accept-invitation?token=" + token
	}
	return fmt.Sprintf("%s/accept-invitation?token=%s", s.baseURL, token)
}

func inviteBody(link string) string {
	return fmt.Sprintf("Hello,\n\nYou have been invited to join a studio workspace. Follow the link to create your account:\n%s\n\nIf you did not expect this email, you can ignore it.\n", link)
}
