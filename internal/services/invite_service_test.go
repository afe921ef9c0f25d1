package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/database/testutil"
	"github.com/lenskyphoto/studio-backend/internal/models"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/mail"
)

type recordingMailer struct {
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func newInviteService(t *testing.T, db *gorm.DB, mailer mail.Mailer) *InviteService {
	t.Helper()
	svc, err := NewInviteService(db, mailer, newTestEvaluator(), WithInviteBaseURL(testBaseURL))
	require.NoError(t, err)
	return svc
}

func TestInviteServiceCreateSendsMail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, _ := seedCompany(t, db, "invite-mail")
	mailer := &recordingMailer{}

	svc := newInviteService(t, db, mailer)

	invitation, link, err := svc.Create(context.Background(), owner, "New@Example.com", models.RolePhotographer)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", invitation.Email)
	require.Equal(t, models.RolePhotographer, invitation.Role)
	require.NotEmpty(t, invitation.Token)
	require.Contains(t, link, invitation.Token)

	require.Len(t, mailer.messages, 1)
	require.Equal(t, []string{"new@example.com"}, mailer.messages[0].To)
	require.Contains(t, mailer.messages[0].Body, link)
}

func TestInviteServiceCreateDisabledMailIsNotAnError(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, _ := seedCompany(t, db, "invite-nomail")
	mailer := &recordingMailer{err: mail.ErrSMTPDisabled}

	svc := newInviteService(t, db, mailer)

	_, _, err := svc.Create(context.Background(), owner, "quiet@example.com", models.RoleRetoucher)
	require.NoError(t, err)
}

func TestInviteServiceCreateOnlyOwners(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	_, company := seedCompany(t, db, "invite-roles")
	photographer := seedMember(t, db, company, "not-an-owner", models.RolePhotographer)

	svc := newInviteService(t, db, &recordingMailer{})

	_, _, err := svc.Create(context.Background(), photographer, "x@example.com", models.RoleRetoucher)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 403, appErr.StatusCode)
}

func TestInviteServiceCreateRejectsRegisteredEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "invite-registered")
	member := seedMember(t, db, company, "existing", models.RolePhotographer)

	svc := newInviteService(t, db, &recordingMailer{})

	_, _, err := svc.Create(context.Background(), owner, member.Email, models.RoleRetoucher)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 400, appErr.StatusCode)
}

func TestInviteServiceReinviteSupersedes(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, _ := seedCompany(t, db, "invite-supersede")

	svc := newInviteService(t, db, &recordingMailer{})

	first, _, err := svc.Create(context.Background(), owner, "again@example.com", models.RolePhotographer)
	require.NoError(t, err)

	second, _, err := svc.Create(context.Background(), owner, "again@example.com", models.RoleRetoucher)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// The first token is dead.
	_, err = svc.Validate(context.Background(), first.Token)
	require.ErrorIs(t, err, ErrInvitationNotFound)

	validated, err := svc.Validate(context.Background(), second.Token)
	require.NoError(t, err)
	require.Equal(t, models.RoleRetoucher, validated.Role)

	var count int64
	require.NoError(t, db.Model(&models.Invitation{}).Where("email = ?", "again@example.com").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestInviteServiceAccept(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "invite-accept")

	svc := newInviteService(t, db, &recordingMailer{})

	invitation, _, err := svc.Create(context.Background(), owner, "joiner@example.com", models.RolePhotographer)
	require.NoError(t, err)

	user, err := svc.Accept(context.Background(), AcceptInput{
		Token:    invitation.Token,
		Email:    "joiner@example.com",
		Username: "joiner",
		Password: "long enough",
	})
	require.NoError(t, err)
	require.Equal(t, models.RolePhotographer, user.Role)
	require.NotNil(t, user.CompanyID)
	require.Equal(t, company.ID, *user.CompanyID)

	// The token is consumed.
	_, err = svc.Accept(context.Background(), AcceptInput{
		Token:    invitation.Token,
		Email:    "joiner@example.com",
		Username: "joiner-2",
		Password: "long enough",
	})
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInviteServiceAcceptEmailMismatch(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, _ := seedCompany(t, db, "invite-mismatch")

	svc := newInviteService(t, db, &recordingMailer{})

	invitation, _, err := svc.Create(context.Background(), owner, "intended@example.com", models.RolePhotographer)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), AcceptInput{
		Token:    invitation.Token,
		Email:    "someone-else@example.com",
		Username: "impostor",
		Password: "long enough",
	})
	require.ErrorIs(t, err, ErrInvitationMismatch)
}

func TestInviteServiceValidateUnknownToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedCompany(t, db, "invite-unknown")

	svc := newInviteService(t, db, &recordingMailer{})

	_, err := svc.Validate(context.Background(), strings.Repeat("f", 32))
	require.ErrorIs(t, err, ErrInvitationNotFound)
}
