package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// InviteHandler manages the invitation lifecycle.
type InviteHandler struct {
	invites  *services.InviteService
	accounts *services.AccountService
}

func NewInviteHandler(invites *services.InviteService, accounts *services.AccountService) *InviteHandler {
	return &InviteHandler{invites: invites, accounts: accounts}
}

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin photographer retoucher"`
}

type acceptInviteRequest struct {
	Token    string `json:"token" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

// POST /api/accounts/invitations
func (h *InviteHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req createInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invitation, link, err := h.invites.Create(requestContext(c), actor, req.Email, models.Role(req.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"email":       invitation.Email,
		"role":        invitation.Role,
		"accept_link": link,
	})
}

// GET /api/accounts/invitations/:token
func (h *InviteHandler) Validate(c *gin.Context) {
	invitation, err := h.invites.Validate(requestContext(c), c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"email": invitation.Email,
		"role":  invitation.Role,
	})
}

// POST /api/accounts/accept-invitation
func (h *InviteHandler) Accept(c *gin.Context) {
	var req acceptInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.invites.Accept(requestContext(c), services.AcceptInput{
		Token:    req.Token,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, userPayload(user))
}
