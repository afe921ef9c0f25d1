package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// StageHandler manages the company's pipeline stages.
type StageHandler struct {
	stages   *services.StageService
	accounts *services.AccountService
}

func NewStageHandler(stages *services.StageService, accounts *services.AccountService) *StageHandler {
	return &StageHandler{stages: stages, accounts: accounts}
}

type createStageRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=128"`
	Order *int   `json:"order" validate:"omitempty,min=1"`
}

type updateStageRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=128"`
	Order *int    `json:"order" validate:"omitempty,min=1"`
}

// GET /api/crm/stages
func (h *StageHandler) List(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	stages, err := h.stages.List(requestContext(c), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stages)
}

// POST /api/crm/stages
func (h *StageHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req createStageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	stage, err := h.stages.Create(requestContext(c), actor, services.CreateStageInput{
		Name:  req.Name,
		Order: req.Order,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, stage)
}

// PUT /api/crm/stages/:id
func (h *StageHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req updateStageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	stage, err := h.stages.Update(requestContext(c), actor, c.Param("id"), services.UpdateStageInput{
		Name:  req.Name,
		Order: req.Order,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stage)
}

// DELETE /api/crm/stages/:id
func (h *StageHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	if err := h.stages.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	response.NoContent(c)
}
