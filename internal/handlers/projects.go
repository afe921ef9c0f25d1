package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// ProjectHandler manages client engagements.
type ProjectHandler struct {
	projects *services.ProjectService
	accounts *services.AccountService
}

func NewProjectHandler(projects *services.ProjectService, accounts *services.AccountService) *ProjectHandler {
	return &ProjectHandler{projects: projects, accounts: accounts}
}

type createProjectRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	CurrentStageID *string `json:"current_stage_id" validate:"omitempty,uuid4"`
}

type updateProjectRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	CurrentStageID *string `json:"current_stage_id"`
}

// GET /api/crm/projects
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	projects, err := h.projects.List(requestContext(c), actor, services.ListProjectsFilter{
		StageName: c.Query("stage_name"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, projects)
}

// POST /api/crm/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req createProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(requestContext(c), actor, services.CreateProjectInput{
		Name:           req.Name,
		CurrentStageID: req.CurrentStageID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// PUT /api/crm/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req updateProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Update(requestContext(c), actor, c.Param("id"), services.UpdateProjectInput{
		Name:           req.Name,
		CurrentStageID: req.CurrentStageID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// DELETE /api/crm/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	if err := h.projects.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	response.NoContent(c)
}
