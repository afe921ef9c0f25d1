package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// FolderHandler manages folders inside collections.
type FolderHandler struct {
	folders  *services.FolderService
	accounts *services.AccountService
}

func NewFolderHandler(folders *services.FolderService, accounts *services.AccountService) *FolderHandler {
	return &FolderHandler{folders: folders, accounts: accounts}
}

type createFolderRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	CollectionID string  `json:"collection_id" validate:"required,uuid4"`
	ParentID     *string `json:"parent_id" validate:"omitempty,uuid4"`
}

// POST /api/filesharing/folders
func (h *FolderHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req createFolderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	folder, err := h.folders.Create(requestContext(c), actor, services.CreateFolderInput{
		Name:         req.Name,
		CollectionID: req.CollectionID,
		ParentID:     req.ParentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, folder)
}
