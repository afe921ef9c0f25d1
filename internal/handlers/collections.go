package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// CollectionHandler manages the photo collection tree, including the
// unauthenticated client-facing surface.
type CollectionHandler struct {
	collections *services.CollectionService
	accounts    *services.AccountService
}

func NewCollectionHandler(collections *services.CollectionService, accounts *services.AccountService) *CollectionHandler {
	return &CollectionHandler{collections: collections, accounts: accounts}
}

type createCollectionRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=200"`
	ProjectID *string `json:"project_id" validate:"omitempty,uuid4"`
	ParentID  *string `json:"parent_id" validate:"omitempty,uuid4"`
}

type updateCollectionRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=200"`
	IsClientSelection *bool   `json:"is_client_selection"`
}

type clientSelectRequest struct {
	PhotoID string `json:"photo_id" validate:"required,uuid4"`
}

// GET /api/filesharing/collections
func (h *CollectionHandler) List(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	collections, err := h.collections.List(requestContext(c), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, collections)
}

// POST /api/filesharing/collections
func (h *CollectionHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req createCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	collection, err := h.collections.Create(requestContext(c), actor, services.CreateCollectionInput{
		Name:      req.Name,
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, collection)
}

// GET /api/filesharing/collections/:id
func (h *CollectionHandler) Get(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	collection, err := h.collections.Get(requestContext(c), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, collection)
}

// PATCH /api/filesharing/collections/:id
func (h *CollectionHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req updateCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	collection, err := h.collections.Update(requestContext(c), actor, c.Param("id"), services.UpdateCollectionInput{
		Name:              req.Name,
		IsClientSelection: req.IsClientSelection,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, collection)
}

// DELETE /api/filesharing/collections/:id
func (h *CollectionHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	if err := h.collections.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "collection deleted"})
}

// POST /api/filesharing/collections/:id/link
func (h *CollectionHandler) GenerateLink(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	link, err := h.collections.GenerateClientLink(requestContext(c), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"client_link": link})
}

// GET /api/filesharing/collections/:id/client
func (h *CollectionHandler) ClientView(c *gin.Context) {
	collection, err := h.collections.ClientView(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, collection)
}

// POST /api/filesharing/collections/:id/client
func (h *CollectionHandler) ClientSelect(c *gin.Context) {
	var req clientSelectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	photo, err := h.collections.ClientSelectPhoto(requestContext(c), c.Param("id"), req.PhotoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, photo)
}
