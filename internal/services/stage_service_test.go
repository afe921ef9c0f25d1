package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lenskyphoto/studio-backend/internal/database/testutil"
	"github.com/lenskyphoto/studio-backend/internal/models"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestStageServiceCreateAppends(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "appends")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	for i, name := range []string{"Shoot", "Cull", "Edit"} {
		stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: name})
		require.NoError(t, err)
		require.Equal(t, i+1, stage.Order)
	}

	require.Equal(t, []string{"Shoot", "Cull", "Edit"}, stageNames(t, db, company.ID))
	requireDenseOrders(t, db, company.ID)
}

func TestStageServiceCreateAtPositionShifts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "insert-at")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	for _, name := range []string{"Shoot", "Edit", "Deliver"} {
		_, err := svc.Create(context.Background(), owner, CreateStageInput{Name: name})
		require.NoError(t, err)
	}

	stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: "Cull", Order: intPtr(2)})
	require.NoError(t, err)
	require.Equal(t, 2, stage.Order)

	require.Equal(t, []string{"Shoot", "Cull", "Edit", "Deliver"}, stageNames(t, db, company.ID))
	requireDenseOrders(t, db, company.ID)
}

func TestStageServiceCreateRejectsOutOfRangeOrder(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, _ := seedCompany(t, db, "out-of-range")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, CreateStageInput{Name: "Shoot"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, CreateStageInput{Name: "Cull", Order: intPtr(5)})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 400, appErr.StatusCode)
}

func TestStageServiceCreateRequiresOwnerOrAdmin(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	_, company := seedCompany(t, db, "roles")
	photographer := seedMember(t, db, company, "shutterbug", models.RolePhotographer)

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), photographer, CreateStageInput{Name: "Shoot"})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 403, appErr.StatusCode)

	admin := seedMember(t, db, company, "backoffice", models.RoleAdmin)
	_, err = svc.Create(context.Background(), admin, CreateStageInput{Name: "Shoot"})
	require.NoError(t, err)
}

func TestStageServiceReorderTowardsHead(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "reorder-head")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	var edit *models.Stage
	for _, name := range []string{"Shoot", "Cull", "Edit", "Retouch", "Deliver"} {
		stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: name})
		require.NoError(t, err)
		if name == "Edit" {
			edit = stage
		}
	}

	updated, err := svc.Update(context.Background(), owner, edit.ID, UpdateStageInput{Order: intPtr(1)})
	require.NoError(t, err)
	require.Equal(t, 1, updated.Order)

	require.Equal(t, []string{"Edit", "Shoot", "Cull", "Retouch", "Deliver"}, stageNames(t, db, company.ID))
	requireDenseOrders(t, db, company.ID)
}

func TestStageServiceReorderTowardsTail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "reorder-tail")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	var cull *models.Stage
	for _, name := range []string{"Shoot", "Cull", "Edit", "Retouch"} {
		stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: name})
		require.NoError(t, err)
		if name == "Cull" {
			cull = stage
		}
	}

	updated, err := svc.Update(context.Background(), owner, cull.ID, UpdateStageInput{Order: intPtr(4)})
	require.NoError(t, err)
	require.Equal(t, 4, updated.Order)

	require.Equal(t, []string{"Shoot", "Edit", "Retouch", "Cull"}, stageNames(t, db, company.ID))
	requireDenseOrders(t, db, company.ID)
}

func TestStageServiceReorderSamePositionIsNoOp(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "reorder-noop")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	var cull *models.Stage
	for _, name := range []string{"Shoot", "Cull", "Edit"} {
		stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: name})
		require.NoError(t, err)
		if name == "Cull" {
			cull = stage
		}
	}

	updated, err := svc.Update(context.Background(), owner, cull.ID, UpdateStageInput{Order: intPtr(2)})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Order)

	require.Equal(t, []string{"Shoot", "Cull", "Edit"}, stageNames(t, db, company.ID))
	requireDenseOrders(t, db, company.ID)
}

func TestStageServiceRename(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "rename")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: "Shoot"})
	require.NoError(t, err)

	name := "Session"
	updated, err := svc.Update(context.Background(), owner, stage.ID, UpdateStageInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Session", updated.Name)
	require.Equal(t, 1, updated.Order)

	require.Equal(t, []string{"Session"}, stageNames(t, db, company.ID))
}

func TestStageServiceDeleteClosesGap(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "delete-gap")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	var cull *models.Stage
	for _, name := range []string{"Shoot", "Cull", "Edit", "Deliver"} {
		stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: name})
		require.NoError(t, err)
		if name == "Cull" {
			cull = stage
		}
	}

	require.NoError(t, svc.Delete(context.Background(), owner, cull.ID))

	require.Equal(t, []string{"Shoot", "Edit", "Deliver"}, stageNames(t, db, company.ID))
	requireDenseOrders(t, db, company.ID)
}

func TestStageServiceDeleteDetachesProjects(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "delete-detach")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	stage, err := svc.Create(context.Background(), owner, CreateStageInput{Name: "Shoot"})
	require.NoError(t, err)

	project := seedProject(t, db, company, owner, "Wedding")
	require.NoError(t, db.Model(project).Update("current_stage_id", stage.ID).Error)

	require.NoError(t, svc.Delete(context.Background(), owner, stage.ID))

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, "id = ?", project.ID).Error)
	require.Nil(t, reloaded.CurrentStageID)
}

func TestStageServiceTenantIsolation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ownerA, companyA := seedCompany(t, db, "tenant-a")
	ownerB, _ := seedCompany(t, db, "tenant-b")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	stage, err := svc.Create(context.Background(), ownerA, CreateStageInput{Name: "Shoot"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), ownerB, stage.ID, UpdateStageInput{Order: intPtr(1)})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 403, appErr.StatusCode)

	err = svc.Delete(context.Background(), ownerB, stage.ID)
	require.Error(t, err)

	// B's listing never shows A's stages.
	stages, err := svc.List(context.Background(), ownerB)
	require.NoError(t, err)
	require.Empty(t, stages)

	require.Equal(t, []string{"Shoot"}, stageNames(t, db, companyA.ID))
}

func TestStageServiceDeleteUnknownStage(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, _ := seedCompany(t, db, "unknown")

	svc, err := NewStageService(db, newTestEvaluator())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), owner, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrStageNotFound)
}
