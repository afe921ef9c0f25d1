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

// ErrProjectNotFound indicates the requested project does not exist.
var ErrProjectNotFound = errors.New("project service: project not found")

// CreateProjectInput captures the attributes for a new project.
type CreateProjectInput struct {
	Name           string
	CurrentStageID *string
}

// UpdateProjectInput represents mutable project fields.
type UpdateProjectInput struct {
	Name           *string
	CurrentStageID *string
}

// ListProjectsFilter narrows a project listing.
type ListProjectsFilter struct {
	// StageName filters projects whose current stage carries this name.
	StageName string
}

// ProjectService manages projects and their provisioning side effects.
// Creating a project also creates the root collection and derives the
// client link, all in one transaction.
type ProjectService struct {
	db            *gorm.DB
	policy        *policy.Evaluator
	publicBaseURL string
}

// NewProjectService constructs a ProjectService instance.
func NewProjectService(db *gorm.DB, eval *policy.Evaluator, publicBaseURL string) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	if eval == nil {
		return nil, errors.New("project service: policy evaluator is required")
	}
	return &ProjectService{
		db:            db,
		policy:        eval,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// List returns the company's projects, optionally filtered by the name of
// their current stage.
func (s *ProjectService) List(ctx context.Context, actor *models.User, filter ListProjectsFilter) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return nil, apperrors.NewBadRequest("user must belong to a company")
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: actor.CompanyID}, policy.ActionViewProjects) {
		return nil, apperrors.ErrForbidden
	}

	query := s.db.WithContext(ctx).
		Preload("CurrentStage").
		Where("projects.company_id = ?", *actor.CompanyID)
	if name := strings.TrimSpace(filter.StageName); name != "" {
		query = query.
			Joins("JOIN stages ON stages.id = projects.current_stage_id").
			Where("stages.name = ?", name)
	}

	var projects []models.Project
	if err := query.Order("projects.created_at ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}
	return projects, nil
}

// GetByID returns a project after a tenant check against the actor.
func (s *ProjectService) GetByID(ctx context.Context, actor *models.User, projectID string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).Preload("CurrentStage").First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: find project: %w", err)
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: &project.CompanyID}, policy.ActionViewProjects) {
		return nil, apperrors.ErrForbidden
	}
	return &project, nil
}

// Create provisions a project together with its root collection. The root
// collection is named "<project> - Project Folder" and the project's client
// link points at that collection's public view.
func (s *ProjectService) Create(ctx context.Context, actor *models.User, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return nil, apperrors.NewBadRequest("user must belong to a company")
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: actor.CompanyID}, policy.ActionCreateProject) {
		return nil, apperrors.NewForbidden("only owners or photographers can create projects")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("project name is required")
	}

	companyID := *actor.CompanyID
	project := &models.Project{
		Name:      name,
		CompanyID: companyID,
		OwnerID:   actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CurrentStageID != nil {
			stageID, err := s.resolveStage(tx, companyID, *input.CurrentStageID)
			if err != nil {
				return err
			}
			project.CurrentStageID = stageID
		}

		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		root := &models.Collection{
			Name:      name + " - Project Folder",
			OwnerID:   actor.ID,
			ProjectID: &project.ID,
		}
		if err := tx.Create(root).Error; err != nil {
			return fmt.Errorf("create root collection: %w", err)
		}

		project.ClientLink = s.clientLink(root.ID)
		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("client_link", project.ClientLink).Error; err != nil {
			return fmt.Errorf("persist client link: %w", err)
		}
		project.Collections = []models.Collection{*root}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// Update applies a partial update to a project in the actor's company.
func (s *ProjectService) Update(ctx context.Context, actor *models.User, projectID string, input UpdateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("find project: %w", err)
		}
		if !s.policy.Allow(actor, policy.Resource{CompanyID: &project.CompanyID, OwnerID: project.OwnerID}, policy.ActionUpdateProject) {
			return apperrors.NewForbidden("you can only update projects in your company")
		}

		updates := map[string]any{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperrors.NewBadRequest("project name is required")
			}
			project.Name = name
			updates["name"] = name
		}
		if input.CurrentStageID != nil {
			stageID, err := s.resolveStage(tx, project.CompanyID, *input.CurrentStageID)
			if err != nil {
				return err
			}
			project.CurrentStageID = stageID
			updates["current_stage_id"] = stageID
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// Delete removes a project and its collection subtree records.
func (s *ProjectService) Delete(ctx context.Context, actor *models.User, projectID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("find project: %w", err)
		}
		if !s.policy.Allow(actor, policy.Resource{CompanyID: &project.CompanyID, OwnerID: project.OwnerID}, policy.ActionDeleteProject) {
			return apperrors.NewForbidden("only owners or admins can delete projects")
		}

		var collectionIDs []string
		if err := tx.Model(&models.Collection{}).
			Where("project_id = ?", project.ID).
			Pluck("id", &collectionIDs).Error; err != nil {
			return fmt.Errorf("list project collections: %w", err)
		}
		if len(collectionIDs) > 0 {
			if err := tx.Where("collection_id IN ?", collectionIDs).Delete(&models.Photo{}).Error; err != nil {
				return fmt.Errorf("delete project photos: %w", err)
			}
			if err := tx.Where("collection_id IN ?", collectionIDs).Delete(&models.Folder{}).Error; err != nil {
				return fmt.Errorf("delete project folders: %w", err)
			}
			if err := tx.Where("id IN ?", collectionIDs).Delete(&models.Collection{}).Error; err != nil {
				return fmt.Errorf("delete project collections: %w", err)
			}
		}

		if err := tx.Delete(&models.Project{}, "id = ?", project.ID).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

// resolveStage validates that a stage exists and belongs to the company.
// An empty ID clears the project's current stage.
func (s *ProjectService) resolveStage(tx *gorm.DB, companyID, stageID string) (*string, error) {
	if stageID == "" {
		return nil, nil
	}
	var stage models.Stage
	err := tx.First(&stage, "id = ?", stageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find stage: %w", err)
	}
	if stage.CompanyID != companyID {
		return nil, apperrors.NewBadRequest("stage belongs to a different company")
	}
	return &stage.ID, nil
}

func (s *ProjectService) clientLink(collectionID string) string {
	return fmt.Sprintf("%s/api/filesharing/collections/%s/client", s.publicBaseURL, collectionID)
}
