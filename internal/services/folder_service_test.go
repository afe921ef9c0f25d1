package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lenskyphoto/studio-backend/internal/database/testutil"
	"github.com/lenskyphoto/studio-backend/internal/models"
	apperrors "github.com/lenskyphoto/studio-backend/pkg/errors"
)

func TestFolderServiceCreate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "folders")
	shooter := seedMember(t, db, company, "folders-shooter", models.RolePhotographer)
	project := seedProject(t, db, company, owner, "Wedding")
	collection := seedCollection(t, db, owner, "Root", &project.ID, nil)

	svc, err := NewFolderService(db, newTestEvaluator())
	require.NoError(t, err)

	folder, err := svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Ceremony",
		CollectionID: collection.ID,
	})
	require.NoError(t, err)
	require.Equal(t, collection.ID, folder.CollectionID)

	nested, err := svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Vows",
		CollectionID: collection.ID,
		ParentID:     &folder.ID,
	})
	require.NoError(t, err)
	require.Equal(t, folder.ID, *nested.ParentID)
}

func TestFolderServiceDuplicateNameRejected(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "folder-dupes")
	shooter := seedMember(t, db, company, "folder-dupes-shooter", models.RolePhotographer)
	project := seedProject(t, db, company, owner, "Wedding")
	collection := seedCollection(t, db, owner, "Root", &project.ID, nil)

	svc, err := NewFolderService(db, newTestEvaluator())
	require.NoError(t, err)

	parent, err := svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Ceremony",
		CollectionID: collection.ID,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Ceremony",
		CollectionID: collection.ID,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 400, appErr.StatusCode)

	// Same name under a different parent is fine.
	_, err = svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Ceremony",
		CollectionID: collection.ID,
		ParentID:     &parent.ID,
	})
	require.NoError(t, err)
}

func TestFolderServiceParentMustShareCollection(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "folder-parents")
	shooter := seedMember(t, db, company, "folder-parents-shooter", models.RolePhotographer)
	project := seedProject(t, db, company, owner, "Wedding")
	collectionA := seedCollection(t, db, owner, "A", &project.ID, nil)
	collectionB := seedCollection(t, db, owner, "B", &project.ID, nil)

	svc, err := NewFolderService(db, newTestEvaluator())
	require.NoError(t, err)

	parent, err := svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Ceremony",
		CollectionID: collectionA.ID,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), shooter, CreateFolderInput{
		Name:         "Stray",
		CollectionID: collectionB.ID,
		ParentID:     &parent.ID,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 400, appErr.StatusCode)
}

func TestFolderServiceCrossTenantForbidden(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ownerA, companyA := seedCompany(t, db, "folder-a")
	_, companyB := seedCompany(t, db, "folder-b")
	shooterB := seedMember(t, db, companyB, "folder-b-shooter", models.RolePhotographer)
	project := seedProject(t, db, companyA, ownerA, "Wedding")
	collection := seedCollection(t, db, ownerA, "Root", &project.ID, nil)

	svc, err := NewFolderService(db, newTestEvaluator())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), shooterB, CreateFolderInput{
		Name:         "Intruder",
		CollectionID: collection.ID,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, 403, appErr.StatusCode)
}

func TestFolderServiceCreateRequiresPhotographerOrRetoucher(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	owner, company := seedCompany(t, db, "folder-roles")
	admin := seedMember(t, db, company, "folder-roles-admin", models.RoleAdmin)
	retoucher := seedMember(t, db, company, "folder-roles-retoucher", models.RoleRetoucher)
	project := seedProject(t, db, company, owner, "Wedding")
	collection := seedCollection(t, db, owner, "Root", &project.ID, nil)

	svc, err := NewFolderService(db, newTestEvaluator())
	require.NoError(t, err)

	for _, actor := range []*models.User{owner, admin} {
		_, err = svc.Create(context.Background(), actor, CreateFolderInput{
			Name:         "Denied",
			CollectionID: collection.ID,
		})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		require.Equal(t, 403, appErr.StatusCode)
	}

	_, err = svc.Create(context.Background(), retoucher, CreateFolderInput{
		Name:         "Retouch Queue",
		CollectionID: collection.ID,
	})
	require.NoError(t, err)
}
