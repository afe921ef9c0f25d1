package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/internal/policy"
)

func newTestEvaluator() *policy.Evaluator {
	return policy.New(policy.UnscopedOwnerOnly)
}

// seedCompany creates an owner with a company and wires the two together.
func seedCompany(t *testing.T, db *gorm.DB, name string) (*models.User, *models.Company) {
	t.Helper()

	owner := &models.User{
		Username: name + "-owner",
		Email:    name + "-owner@example.com",
		Password: "x",
		Role:     models.RoleOwner,
	}
	require.NoError(t, db.Create(owner).Error)

	company := &models.Company{Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	require.NoError(t, db.Model(owner).Update("company_id", company.ID).Error)
	owner.CompanyID = &company.ID

	return owner, company
}

// seedMember creates a user with the given role inside the company.
func seedMember(t *testing.T, db *gorm.DB, company *models.Company, username string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "x",
		Role:      role,
		CompanyID: &company.ID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedStage(t *testing.T, db *gorm.DB, company *models.Company, owner *models.User, name string, order int) *models.Stage {
	t.Helper()

	stage := &models.Stage{
		CompanyID:   company.ID,
		Name:        name,
		Order:       order,
		CreatedByID: owner.ID,
	}
	require.NoError(t, db.Create(stage).Error)
	return stage
}

func seedProject(t *testing.T, db *gorm.DB, company *models.Company, owner *models.User, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:      name,
		CompanyID: company.ID,
		OwnerID:   owner.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedCollection(t *testing.T, db *gorm.DB, owner *models.User, name string, projectID, parentID *string) *models.Collection {
	t.Helper()

	collection := &models.Collection{
		Name:      name,
		OwnerID:   owner.ID,
		ProjectID: projectID,
		ParentID:  parentID,
	}
	require.NoError(t, db.Create(collection).Error)
	return collection
}

// stageNames returns the company's stage names in pipeline order, for
// asserting ordering outcomes.
func stageNames(t *testing.T, db *gorm.DB, companyID string) []string {
	t.Helper()

	var stages []models.Stage
	require.NoError(t, db.Where("company_id = ?", companyID).Order("sort_order ASC").Find(&stages).Error)

	names := make([]string, 0, len(stages))
	for _, stage := range stages {
		names = append(names, stage.Name)
	}
	return names
}

// requireDenseOrders asserts that the company's stage orders are exactly 1..N.
func requireDenseOrders(t *testing.T, db *gorm.DB, companyID string) {
	t.Helper()

	var stages []models.Stage
	require.NoError(t, db.Where("company_id = ?", companyID).Order("sort_order ASC").Find(&stages).Error)

	for i, stage := range stages {
		require.Equal(t, i+1, stage.Order, "stage %q has order %d, want %d", stage.Name, stage.Order, i+1)
	}
}
