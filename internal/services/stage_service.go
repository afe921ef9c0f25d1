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

// ErrStageNotFound indicates the requested stage does not exist.
var ErrStageNotFound = errors.New("stage service: stage not found")

// CreateStageInput captures the attributes for a new pipeline stage.
type CreateStageInput struct {
	Name string
	// Order optionally places the stage at a position in [1, N+1]; when nil
	// the stage is appended after the current last stage.
	Order *int
}

// UpdateStageInput represents mutable stage fields.
type UpdateStageInput struct {
	Name  *string
	Order *int
}

// StageService maintains the per-company pipeline. Within a company the
// stage orders are always exactly {1..N}: inserts, reorders, and deletes
// shift neighbouring stages inside a single transaction so no reader ever
// observes a duplicate or a gap.
type StageService struct {
	db     *gorm.DB
	policy *policy.Evaluator
}

// NewStageService constructs a StageService instance.
func NewStageService(db *gorm.DB, eval *policy.Evaluator) (*StageService, error) {
	if db == nil {
		return nil, errors.New("stage service: db is required")
	}
	if eval == nil {
		return nil, errors.New("stage service: policy evaluator is required")
	}
	return &StageService{db: db, policy: eval}, nil
}

// List returns the company's stages in pipeline order.
func (s *StageService) List(ctx context.Context, actor *models.User) ([]models.Stage, error) {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return nil, apperrors.NewBadRequest("user must belong to a company")
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: actor.CompanyID}, policy.ActionViewStages) {
		return nil, apperrors.ErrForbidden
	}

	var stages []models.Stage
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", *actor.CompanyID).
		Order("sort_order ASC").
		Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("stage service: list stages: %w", err)
	}
	return stages, nil
}

// Create inserts a stage. When input.Order names an occupied position the
// stages at that position and after shift one place towards the tail first,
// so the unique (company, order) index never sees a collision.
func (s *StageService) Create(ctx context.Context, actor *models.User, input CreateStageInput) (*models.Stage, error) {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return nil, apperrors.NewBadRequest("user must belong to a company")
	}
	if !s.policy.Allow(actor, policy.Resource{CompanyID: actor.CompanyID}, policy.ActionManageStages) {
		return nil, apperrors.NewForbidden("only owners or admins can create stages")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("stage name is required")
	}

	companyID := *actor.CompanyID
	stage := &models.Stage{
		CompanyID:   companyID,
		Name:        name,
		CreatedByID: actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := countStages(tx, companyID)
		if err != nil {
			return err
		}

		position := count + 1
		if input.Order != nil {
			position = *input.Order
			if position < 1 || position > count+1 {
				return apperrors.NewBadRequest(fmt.Sprintf("order must be between 1 and %d", count+1))
			}
			if position <= count {
				if err := shiftStagesUp(tx, companyID, position, count); err != nil {
					return err
				}
			}
		}

		stage.Order = position
		if err := tx.Create(stage).Error; err != nil {
			return fmt.Errorf("create stage: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stage, nil
}

// Update renames and/or repositions a stage. A reorder is a rotation of the
// affected sub-range: the stage is parked outside the sequence, the range
// between the old and new positions shifts by one, and the stage lands on
// its new position, all in one transaction.
func (s *StageService) Update(ctx context.Context, actor *models.User, stageID string, input UpdateStageInput) (*models.Stage, error) {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return nil, apperrors.NewBadRequest("user must belong to a company")
	}

	var stage models.Stage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findStage(tx, stageID, &stage); err != nil {
			return err
		}
		if !s.policy.Allow(actor, policy.Resource{CompanyID: &stage.CompanyID}, policy.ActionManageStages) {
			return apperrors.NewForbidden("you can only update stages in your company")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperrors.NewBadRequest("stage name is required")
			}
			stage.Name = name
			if err := tx.Model(&models.Stage{}).
				Where("id = ?", stage.ID).
				Update("name", name).Error; err != nil {
				return fmt.Errorf("rename stage: %w", err)
			}
		}

		if input.Order == nil || *input.Order == stage.Order {
			return nil
		}

		count, err := countStages(tx, stage.CompanyID)
		if err != nil {
			return err
		}

		newOrder := *input.Order
		if newOrder < 1 || newOrder > count {
			return apperrors.NewBadRequest(fmt.Sprintf("order must be between 1 and %d", count))
		}

		oldOrder := stage.Order

		// Park the stage at 0 so the shifted range never collides with it.
		if err := tx.Model(&models.Stage{}).
			Where("id = ?", stage.ID).
			Update("sort_order", 0).Error; err != nil {
			return fmt.Errorf("park stage: %w", err)
		}

		if newOrder < oldOrder {
			if err := shiftStagesUp(tx, stage.CompanyID, newOrder, oldOrder-1); err != nil {
				return err
			}
		} else {
			if err := shiftStagesDown(tx, stage.CompanyID, oldOrder+1, newOrder); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Stage{}).
			Where("id = ?", stage.ID).
			Update("sort_order", newOrder).Error; err != nil {
			return fmt.Errorf("assign stage order: %w", err)
		}
		stage.Order = newOrder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stage, nil
}

// Delete removes a stage and closes the gap it leaves. Projects pointing at
// the deleted stage get their current stage cleared in the same transaction
// rather than being left dangling.
func (s *StageService) Delete(ctx context.Context, actor *models.User, stageID string) error {
	ctx = ensureContext(ctx)

	if actor == nil || actor.CompanyID == nil {
		return apperrors.NewBadRequest("user must belong to a company")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stage models.Stage
		if err := findStage(tx, stageID, &stage); err != nil {
			return err
		}
		if !s.policy.Allow(actor, policy.Resource{CompanyID: &stage.CompanyID}, policy.ActionManageStages) {
			return apperrors.NewForbidden("only owners or admins in the same company can delete stages")
		}

		if err := tx.Model(&models.Project{}).
			Where("current_stage_id = ?", stage.ID).
			Update("current_stage_id", nil).Error; err != nil {
			return fmt.Errorf("detach projects: %w", err)
		}

		if err := tx.Delete(&models.Stage{}, "id = ?", stage.ID).Error; err != nil {
			return fmt.Errorf("delete stage: %w", err)
		}

		count, err := countStages(tx, stage.CompanyID)
		if err != nil {
			return err
		}
		// count is already the post-delete size; close the gap.
		return shiftStagesDown(tx, stage.CompanyID, stage.Order+1, count+1)
	})
}

func findStage(tx *gorm.DB, stageID string, dest *models.Stage) error {
	err := tx.First(dest, "id = ?", stageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStageNotFound
	}
	if err != nil {
		return fmt.Errorf("find stage: %w", err)
	}
	return nil
}

func countStages(tx *gorm.DB, companyID string) (int, error) {
	var count int64
	if err := tx.Model(&models.Stage{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count stages: %w", err)
	}
	return int(count), nil
}

// shiftStagesUp moves the orders in [from, to] one place towards the tail.
// Rows are updated highest-first so the unique index never sees two rows on
// the same order, even on engines that enforce uniqueness per row.
func shiftStagesUp(tx *gorm.DB, companyID string, from, to int) error {
	stages, err := stagesInRange(tx, companyID, from, to, "sort_order DESC")
	if err != nil {
		return err
	}
	for _, stage := range stages {
		if err := tx.Model(&models.Stage{}).
			Where("id = ?", stage.ID).
			Update("sort_order", stage.Order+1).Error; err != nil {
			return fmt.Errorf("shift stage up: %w", err)
		}
	}
	return nil
}

// shiftStagesDown moves the orders in [from, to] one place towards the head,
// lowest-first.
func shiftStagesDown(tx *gorm.DB, companyID string, from, to int) error {
	stages, err := stagesInRange(tx, companyID, from, to, "sort_order ASC")
	if err != nil {
		return err
	}
	for _, stage := range stages {
		if err := tx.Model(&models.Stage{}).
			Where("id = ?", stage.ID).
			Update("sort_order", stage.Order-1).Error; err != nil {
			return fmt.Errorf("shift stage down: %w", err)
		}
	}
	return nil
}

func stagesInRange(tx *gorm.DB, companyID string, from, to int, order string) ([]models.Stage, error) {
	if from > to {
		return nil, nil
	}
	var stages []models.Stage
	if err := tx.Where("company_id = ? AND sort_order BETWEEN ? AND ?", companyID, from, to).
		Order(order).
		Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("load stage range: %w", err)
	}
	return stages, nil
}
