package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	"github.com/lenskyphoto/studio-backend/internal/storage"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
	"github.com/lenskyphoto/studio-backend/pkg/logger"
	"github.com/lenskyphoto/studio-backend/pkg/metrics"
)

// UploadFile is a single incoming file in an upload request.
type UploadFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// UploadPhotosInput captures an upload request.
type UploadPhotosInput struct {
	CollectionID string
	FolderID     *string
	Files        []UploadFile
}

// PhotoService stores photo blobs and their metadata rows. The blob store
// and the database are not transactional with each other: uploads write the
// blob first and deletions remove the row first, so a crash leaves at worst
// an orphaned file, never a row pointing at nothing.
type PhotoService struct {
	db     *gorm.DB
	policy *policy.Evaluator
	store  storage.Store
	log    *zap.Logger
}

// NewPhotoService constructs a PhotoService instance.
func NewPhotoService(db *gorm.DB, eval *policy.Evaluator, store storage.Store) (*PhotoService, error) {
	if db == nil {
		return nil, errors.New("photo service: db is required")
	}
	if eval == nil {
		return nil, errors.New("photo service: policy evaluator is required")
	}
	if store == nil {
		return nil, errors.New("photo service: store is required")
	}
	return &PhotoService{
		db:     db,
		policy: eval,
		store:  store,
		log:    logger.WithModule("photos"),
	}, nil
}

// Upload stores one or more files into a collection, optionally inside a
// folder of that collection. All metadata rows commit together; the blobs
// are written before the transaction so a failed commit orphans files
// instead of losing rows.
func (s *PhotoService) Upload(ctx context.Context, actor *models.User, input UploadPhotosInput) ([]models.Photo, error) {
	ctx = ensureContext(ctx)

	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if len(input.Files) == 0 {
		return nil, apperrors.NewBadRequest("no files provided")
	}

	var collection models.Collection
	err := s.db.WithContext(ctx).First(&collection, "id = ?", input.CollectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("photo service: find collection: %w", err)
	}

	var project *models.Project
	var companyName string
	companyID, err := resolveCollectionCompany(s.db.WithContext(ctx), &collection)
	if err != nil {
		return nil, err
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: companyID, OwnerID: collection.OwnerID}, policy.ActionWriteTree) {
		return nil, apperrors.NewForbidden("only photographers and retouchers can upload photos")
	}

	if collection.ProjectID != nil {
		project = &models.Project{}
		if err := s.db.WithContext(ctx).First(project, "id = ?", *collection.ProjectID).Error; err != nil {
			return nil, fmt.Errorf("photo service: find project: %w", err)
		}
		var company models.Company
		if err := s.db.WithContext(ctx).First(&company, "id = ?", project.CompanyID).Error; err != nil {
			return nil, fmt.Errorf("photo service: find company: %w", err)
		}
		companyName = company.Name
	}

	var folderName string
	if input.FolderID != nil {
		var folder models.Folder
		err := s.db.WithContext(ctx).First(&folder, "id = ?", *input.FolderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("photo service: find folder: %w", err)
		}
		if folder.CollectionID != collection.ID {
			return nil, apperrors.NewBadRequest("folder belongs to a different collection")
		}
		folderName = folder.Name
	}

	projectName := collection.Name
	if project != nil {
		projectName = project.Name
	}

	photos := make([]models.Photo, 0, len(input.Files))
	for _, file := range input.Files {
		name := strings.TrimSpace(file.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("file name is required")
		}

		relPath := storage.UploadPath(companyName, projectName, folderName, name)
		size, err := s.store.Save(ctx, relPath, file.Reader)
		if err != nil {
			return nil, fmt.Errorf("photo service: store file %q: %w", name, err)
		}

		photos = append(photos, models.Photo{
			FileName:     name,
			FilePath:     relPath,
			ContentType:  file.ContentType,
			Size:         size,
			UploadedByID: actor.ID,
			CollectionID: collection.ID,
			FolderID:     input.FolderID,
		})
	}

	if err := s.db.WithContext(ctx).Create(&photos).Error; err != nil {
		return nil, fmt.Errorf("photo service: create photo records: %w", err)
	}
	metrics.PhotoUploads.Add(float64(len(photos)))

	return photos, nil
}

// Delete removes a photo's metadata row, then removes the blob best-effort.
// A failed blob removal is logged and does not fail the request.
func (s *PhotoService) Delete(ctx context.Context, actor *models.User, collectionID, photoID string) error {
	ctx = ensureContext(ctx)

	if actor == nil {
		return apperrors.ErrUnauthorized
	}

	var photo models.Photo
	err := s.db.WithContext(ctx).
		First(&photo, "id = ? AND collection_id = ?", photoID, collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPhotoNotFound
	}
	if err != nil {
		return fmt.Errorf("photo service: find photo: %w", err)
	}

	var collection models.Collection
	if err := s.db.WithContext(ctx).First(&collection, "id = ?", photo.CollectionID).Error; err != nil {
		return fmt.Errorf("photo service: find collection: %w", err)
	}
	companyID, err := resolveCollectionCompany(s.db.WithContext(ctx), &collection)
	if err != nil {
		return err
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: companyID, OwnerID: photo.UploadedByID}, policy.ActionDeletePhoto) {
		return apperrors.NewForbidden("you can only delete photos you uploaded")
	}

	if err := s.db.WithContext(ctx).Delete(&models.Photo{}, "id = ?", photo.ID).Error; err != nil {
		return fmt.Errorf("photo service: delete photo record: %w", err)
	}

	if err := s.store.Remove(photo.FilePath); err != nil {
		s.log.Warn("failed to remove photo file",
			zap.String("photo_id", photo.ID),
			zap.String("path", photo.FilePath),
			zap.Error(err))
	}
	return nil
}
