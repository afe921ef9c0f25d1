package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	appErrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// respondServiceError maps service sentinel errors onto HTTP statuses before
// delegating to the shared error writer. Anything unrecognised falls through
// as a 500 without leaking internals.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrCompanyNotFound),
		errors.Is(err, services.ErrStageNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrCollectionNotFound),
		errors.Is(err, services.ErrFolderNotFound),
		errors.Is(err, services.ErrPhotoNotFound):
		response.Error(c, appErrors.ErrNotFound)

	case errors.Is(err, services.ErrEmailInUse):
		response.Error(c, appErrors.NewBadRequest("email is already registered"))
	case errors.Is(err, services.ErrUsernameInUse):
		response.Error(c, appErrors.NewBadRequest("username is already taken"))
	case errors.Is(err, services.ErrInvitationMismatch):
		response.Error(c, appErrors.NewBadRequest("invitation does not match this email"))

	default:
		response.Error(c, err)
	}
}
