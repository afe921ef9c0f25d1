package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	appErrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// PhotoHandler manages photo uploads and removal.
type PhotoHandler struct {
	photos   *services.PhotoService
	accounts *services.AccountService
}

func NewPhotoHandler(photos *services.PhotoService, accounts *services.AccountService) *PhotoHandler {
	return &PhotoHandler{photos: photos, accounts: accounts}
}

// POST /api/filesharing/collections/:id/photos
//
// Multipart form upload: one or more files under the "files" field, with an
// optional "folder_id" field placing them inside a folder of the collection.
func (h *PhotoHandler) Upload(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid multipart payload"))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, appErrors.NewBadRequest("no files provided"))
		return
	}

	var folderID *string
	if values := form.Value["folder_id"]; len(values) > 0 {
		if id := strings.TrimSpace(values[0]); id != "" {
			folderID = &id
		}
	}

	uploads := make([]services.UploadFile, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("unreadable file in payload"))
			return
		}
		defer f.Close()

		uploads = append(uploads, services.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	photos, err := h.photos.Upload(requestContext(c), actor, services.UploadPhotosInput{
		CollectionID: c.Param("id"),
		FolderID:     folderID,
		Files:        uploads,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, photos)
}

// DELETE /api/filesharing/collections/:id/photos/:photoID
func (h *PhotoHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	if err := h.photos.Delete(requestContext(c), actor, c.Param("id"), c.Param("photoID")); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "photo deleted"})
}
