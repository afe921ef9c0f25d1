package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lenskyphoto/studio-backend/internal/database/testutil"
	"github.com/lenskyphoto/studio-backend/internal/models"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
)

func TestAccountServiceRegisterOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewAccountService(db, newTestEvaluator())
	require.NoError(t, err)

	user, err := svc.RegisterOwner(context.Background(), RegisterOwnerInput{
		Username: "studio-boss",
		Email:    "Boss@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, user.Role)
	require.Equal(t, "boss@example.com", user.Email)
	require.NotEqual(t, "correct horse", user.Password)
	require.Nil(t, user.CompanyID)
}

func TestAccountServiceRegisterOwnerValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewAccountService(db, newTestEvaluator())
	require.NoError(t, err)

	_, err = svc.RegisterOwner(context.Background(), RegisterOwnerInput{
		Username: "short-pass",
		Email:    "short@example.com",
		Password: "short",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 400, appErr.StatusCode)
}

func TestAccountServiceRegisterOwnerDuplicateEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewAccountService(db, newTestEvaluator())
	require.NoError(t, err)

	input := RegisterOwnerInput{
		Username: "first",
		Email:    "dup@example.com",
		Password: "long enough",
	}
	_, err = svc.RegisterOwner(context.Background(), input)
	require.NoError(t, err)

	input.Username = "second"
	_, err = svc.RegisterOwner(context.Background(), input)
	require.ErrorIs(t, err, ErrEmailInUse)
}

func TestAccountServiceAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewAccountService(db, newTestEvaluator())
	require.NoError(t, err)

	registered, err := svc.RegisterOwner(context.Background(), RegisterOwnerInput{
		Username: "login-user",
		Email:    "login@example.com",
		Password: "open sesame",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "login-user", "open sesame")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "login-user", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "open sesame")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAccountServiceListCompanyUsers(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "roster")
	seedMember(t, db, company, "member-1", models.RolePhotographer)
	seedMember(t, db, company, "member-2", models.RoleRetoucher)

	// Another tenant's user must not appear.
	seedCompany(t, db, "roster-other")

	svc, err := NewAccountService(db, newTestEvaluator())
	require.NoError(t, err)

	users, err := svc.ListCompanyUsers(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for _, u := range users {
		require.Equal(t, company.ID, *u.CompanyID)
	}
}
