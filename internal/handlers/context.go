package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/middleware"
	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/services"
	appErrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUser loads the authenticated user from the claims the auth
// middleware stored. A false return means an error response has already
// been written.
func currentUser(c *gin.Context, accounts *services.AccountService) (*models.User, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	user, err := accounts.GetByID(requestContext(c), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.Error(c, appErrors.ErrUnauthorized)
		} else {
			response.Error(c, err)
		}
		return nil, false
	}
	return user, true
}
