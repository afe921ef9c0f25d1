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

// Sentinel errors for the collection tree.
var (
	ErrCollectionNotFound = errors.New("collection service: collection not found")
	ErrPhotoNotFound      = errors.New("collection service: photo not found")
)

// CreateCollectionInput captures the attributes for a new collection node.
type CreateCollectionInput struct {
	Name      string
	ProjectID *string
	ParentID  *string
}

// UpdateCollectionInput represents mutable collection fields.
type UpdateCollectionInput struct {
	Name              *string
	IsClientSelection *bool
}

// CollectionService manages the collection hierarchy. Every access resolves
// the collection to its project's company before consulting the policy
// evaluator, so tenant isolation holds regardless of how deep the node sits.
type CollectionService struct {
	db            *gorm.DB
	policy        *policy.Evaluator
	publicBaseURL string
}

// NewCollectionService constructs a CollectionService instance.
func NewCollectionService(db *gorm.DB, eval *policy.Evaluator, publicBaseURL string) (*CollectionService, error) {
	if db == nil {
		return nil, errors.New("collection service: db is required")
	}
	if eval == nil {
		return nil, errors.New("collection service: policy evaluator is required")
	}
	return &CollectionService{
		db:            db,
		policy:        eval,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Create adds a collection node. A parent pins the child to the parent's
// project: the child inherits it when the input omits one and creation
// fails when the input names a different project.
func (s *CollectionService) Create(ctx context.Context, actor *models.User, input CreateCollectionInput) (*models.Collection, error) {
	ctx = ensureContext(ctx)

	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("collection name is required")
	}

	collection := &models.Collection{
		Name:      name,
		OwnerID:   actor.ID,
		ProjectID: input.ProjectID,
		ParentID:  input.ParentID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.ParentID != nil {
			var parent models.Collection
			if err := tx.First(&parent, "id = ?", *input.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCollectionNotFound
				}
				return fmt.Errorf("find parent collection: %w", err)
			}

			parentCompany, err := resolveCollectionCompany(tx, &parent)
			if err != nil {
				return err
			}
			if !s.policy.Allow(actor, policy.Resource{CompanyID: parentCompany, OwnerID: parent.OwnerID}, policy.ActionWriteTree) {
				return apperrors.NewForbidden("you cannot create collections under this parent")
			}

			switch {
			case collection.ProjectID == nil:
				collection.ProjectID = parent.ProjectID
			case parent.ProjectID == nil || *parent.ProjectID != *collection.ProjectID:
				return apperrors.NewBadRequest("collection project must match its parent's project")
			}
		}

		if collection.ProjectID == nil && input.ParentID == nil {
			if !s.policy.Allow(actor, policy.Resource{OwnerID: actor.ID}, policy.ActionWriteTree) {
				return apperrors.NewForbidden("only photographers and retouchers can create collections")
			}
		}

		if collection.ProjectID != nil {
			var project models.Project
			if err := tx.First(&project, "id = ?", *collection.ProjectID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProjectNotFound
				}
				return fmt.Errorf("find project: %w", err)
			}
			if !s.policy.Allow(actor, policy.Resource{CompanyID: &project.CompanyID, OwnerID: actor.ID}, policy.ActionWriteTree) {
				return apperrors.NewForbidden("you can only create collections in your company's projects")
			}
		}

		if err := tx.Create(collection).Error; err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return collection, nil
}

// List returns the collections visible to the actor: those resolving to the
// actor's company, plus unscoped ones the visibility policy admits.
func (s *CollectionService) List(ctx context.Context, actor *models.User) ([]models.Collection, error) {
	ctx = ensureContext(ctx)

	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}

	// The company filter runs in SQL so rows outside the actor's tenant
	// never leave the database. Unscoped rows carry no company, so only
	// those pass through the visibility policy afterwards.
	query := s.db.WithContext(ctx).Model(&models.Collection{}).
		Order("collections.created_at ASC")
	if actor.CompanyID != nil {
		query = query.
			Joins("LEFT JOIN projects ON projects.id = collections.project_id").
			Where("projects.company_id = ? OR collections.project_id IS NULL", *actor.CompanyID)
	} else {
		query = query.Where("collections.project_id IS NULL")
	}

	var collections []models.Collection
	if err := query.Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("collection service: list collections: %w", err)
	}

	visible := make([]models.Collection, 0, len(collections))
	for i := range collections {
		if collections[i].ProjectID != nil {
			visible = append(visible, collections[i])
			continue
		}
		if s.policy.Allow(actor, policy.Resource{OwnerID: collections[i].OwnerID}, policy.ActionReadCollection) {
			visible = append(visible, collections[i])
		}
	}
	return visible, nil
}

// Get returns a collection with its subcollections, folders, and photos.
func (s *CollectionService) Get(ctx context.Context, actor *models.User, collectionID string) (*models.Collection, error) {
	ctx = ensureContext(ctx)

	collection, _, err := s.loadGuarded(ctx, actor, collectionID, policy.ActionReadCollection)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Preload("Subcollections").
		Preload("Folders").
		Preload("Photos").
		First(collection, "id = ?", collection.ID).Error; err != nil {
		return nil, fmt.Errorf("collection service: load collection tree: %w", err)
	}
	return collection, nil
}

// Update applies a partial update to a collection.
func (s *CollectionService) Update(ctx context.Context, actor *models.User, collectionID string, input UpdateCollectionInput) (*models.Collection, error) {
	ctx = ensureContext(ctx)

	collection, _, err := s.loadGuarded(ctx, actor, collectionID, policy.ActionWriteTree)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("collection name is required")
		}
		collection.Name = name
		updates["name"] = name
	}
	if input.IsClientSelection != nil {
		collection.IsClientSelection = *input.IsClientSelection
		updates["is_client_selection"] = *input.IsClientSelection
	}
	if len(updates) == 0 {
		return collection, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Collection{}).
		Where("id = ?", collection.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("collection service: update collection: %w", err)
	}
	return collection, nil
}

// Delete removes a leaf collection. A collection still owning photos or
// subcollections is refused rather than cascaded.
func (s *CollectionService) Delete(ctx context.Context, actor *models.User, collectionID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := tx.First(&collection, "id = ?", collectionID).Error; err != nil {
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
			return apperrors.NewForbidden("you can only delete collections in your company")
		}

		var photos int64
		if err := tx.Model(&models.Photo{}).Where("collection_id = ?", collection.ID).Count(&photos).Error; err != nil {
			return fmt.Errorf("count photos: %w", err)
		}
		if photos > 0 {
			return apperrors.NewBadRequest("collection contains photos")
		}

		var children int64
		if err := tx.Model(&models.Collection{}).Where("parent_id = ?", collection.ID).Count(&children).Error; err != nil {
			return fmt.Errorf("count subcollections: %w", err)
		}
		if children > 0 {
			return apperrors.NewBadRequest("collection contains subcollections")
		}

		if err := tx.Where("collection_id = ?", collection.ID).Delete(&models.Folder{}).Error; err != nil {
			return fmt.Errorf("delete folders: %w", err)
		}
		if err := tx.Delete(&models.Collection{}, "id = ?", collection.ID).Error; err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		return nil
	})
}

// GenerateClientLink returns the stable public URL for a collection's
// client view.
func (s *CollectionService) GenerateClientLink(ctx context.Context, actor *models.User, collectionID string) (string, error) {
	ctx = ensureContext(ctx)

	collection, _, err := s.loadGuarded(ctx, actor, collectionID, policy.ActionWriteTree)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/filesharing/collections/%s/client", s.publicBaseURL, collection.ID), nil
}

// ClientView serves the unauthenticated client-facing read of a collection.
func (s *CollectionService) ClientView(ctx context.Context, collectionID string) (*models.Collection, error) {
	ctx = ensureContext(ctx)

	var collection models.Collection
	err := s.db.WithContext(ctx).
		Preload("Folders").
		Preload("Photos").
		First(&collection, "id = ?", collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collection service: load client view: %w", err)
	}
	return &collection, nil
}

// ClientSelectPhoto marks a photo in the collection as selected by the
// client. Selecting an already-selected photo is a no-op.
func (s *CollectionService) ClientSelectPhoto(ctx context.Context, collectionID, photoID string) (*models.Photo, error) {
	ctx = ensureContext(ctx)

	var collection models.Collection
	err := s.db.WithContext(ctx).First(&collection, "id = ?", collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collection service: find collection: %w", err)
	}

	var photo models.Photo
	err = s.db.WithContext(ctx).
		First(&photo, "id = ? AND collection_id = ?", photoID, collection.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collection service: find photo: %w", err)
	}

	if !photo.IsSelected {
		if err := s.db.WithContext(ctx).Model(&models.Photo{}).
			Where("id = ?", photo.ID).
			Update("is_selected", true).Error; err != nil {
			return nil, fmt.Errorf("collection service: select photo: %w", err)
		}
		photo.IsSelected = true
	}
	return &photo, nil
}

// loadGuarded fetches a collection and applies the given policy action
// against its resolved company.
func (s *CollectionService) loadGuarded(ctx context.Context, actor *models.User, collectionID string, action policy.Action) (*models.Collection, *string, error) {
	if actor == nil {
		return nil, nil, apperrors.ErrUnauthorized
	}

	var collection models.Collection
	err := s.db.WithContext(ctx).First(&collection, "id = ?", collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("collection service: find collection: %w", err)
	}

	companyID, err := resolveCollectionCompany(s.db.WithContext(ctx), &collection)
	if err != nil {
		return nil, nil, err
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: companyID, OwnerID: collection.OwnerID}, action) {
		return nil, nil, apperrors.ErrForbidden
	}
	return &collection, companyID, nil
}
