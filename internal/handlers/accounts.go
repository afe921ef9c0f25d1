package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/lenskyphoto/studio-backend/internal/auth"
	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/services"
	appErrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/metrics"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// AccountHandler manages registration, login, and the company roster.
type AccountHandler struct {
	accounts *services.AccountService
	jwt      *iauth.JWTService
}

func NewAccountHandler(accounts *services.AccountService, jwt *iauth.JWTService) *AccountHandler {
	return &AccountHandler{accounts: accounts, jwt: jwt}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/accounts/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.accounts.RegisterOwner(requestContext(c), services.RegisterOwnerInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, userPayload(user))
}

// POST /api/accounts/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.accounts.Authenticate(requestContext(c), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		// Normalise auth errors to 401
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userPayload(user),
	})
}

// GET /api/accounts/users
func (h *AccountHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	users, err := h.accounts.ListCompanyUsers(requestContext(c), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, userPayload(&users[i]))
	}
	response.Success(c, http.StatusOK, payload)
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"company_id": user.CompanyID,
	}
}
