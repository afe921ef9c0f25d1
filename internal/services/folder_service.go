package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
)

// ErrFolderNotFound indicates the requested folder does not exist.
var ErrFolderNotFound = errors.New("folder service: folder not found")

// CreateFolderInput captures the attributes for a new folder.
type CreateFolderInput struct {
	Name         string
	CollectionID string
	ParentID     *string
}

// FolderService manages folders inside collections.
type FolderService struct {
	db     *gorm.DB
	policy *policy.Evaluator
}

// NewFolderService constructs a FolderService instance.
func NewFolderService(db *gorm.DB, eval *policy.Evaluator) (*FolderService, error) {
	if db == nil {
		return nil, errors.New("folder service: db is required")
	}
	if eval == nil {
		return nil, errors.New("folder service: policy evaluator is required")
	}
	return &FolderService{db: db, policy: eval}, nil
}

// Create adds a folder to a collection. Folder names are unique per
// (collection, parent) and a parent folder must live in the same collection.
func (s *FolderService) Create(ctx context.Context, actor *models.User, input CreateFolderInput) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("folder name is required")
	}
	if input.CollectionID == "" {
		return nil, apperrors.NewBadRequest("collection is required")
	}

	folder := &models.Folder{
		Name:         name,
		CollectionID: input.CollectionID,
		ParentID:     input.ParentID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := tx.First(&collection, "id = ?", input.CollectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCollectionNotFound
			}
			return fmt.Errorf("find collection: %w", err)
		}

		companyID, err := resolveCollectionCompany(tx, &collection)
		if err != nil {
			return err
		}
		if !s.policy.Allow(actor, policy.Resource{CompanyID: companyID, OwnerID: collection.OwnerID}, policy.ActionWriteTree) {
			return apperrors.NewForbidden("you can only create folders in your company's collections")
		}

		if input.ParentID != nil {
			var parent models.Folder
			if err := tx.First(&parent, "id = ?", *input.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrFolderNotFound
				}
				return fmt.Errorf("find parent folder: %w", err)
			}
			if parent.CollectionID != collection.ID {
				return apperrors.NewBadRequest("parent folder belongs to a different collection")
			}
		}

		// The unique index treats NULL parents as distinct rows, so
		// root-level duplicates have to be caught with an explicit lookup.
		dupes := tx.Model(&models.Folder{}).
			Where("name = ? AND collection_id = ?", name, collection.ID)
		if input.ParentID == nil {
			dupes = dupes.Where("parent_id IS NULL")
		} else {
			dupes = dupes.Where("parent_id = ?", *input.ParentID)
		}
		var existing int64
		if err := dupes.Count(&existing).Error; err != nil {
			return fmt.Errorf("check folder name: %w", err)
		}
		if existing > 0 {
			return apperrors.NewBadRequest("a folder with this name already exists here")
		}

		if err := tx.Create(folder).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("a folder with this name already exists here")
			}
			return fmt.Errorf("create folder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return folder, nil
}

// resolveCollectionCompany maps a collection to its company through the
// owning project, nil when the collection is unscoped. Shared by the folder
// and photo services.
func resolveCollectionCompany(tx *gorm.DB, collection *models.Collection) (*string, error) {
	if collection.ProjectID == nil {
		return nil, nil
	}
	var project models.Project
	if err := tx.First(&project, "id = ?", *collection.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("resolve collection company: %w", err)
	}
	return &project.CompanyID, nil
}
