package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/models"
)

// AutoMigrate applies the schema for all persistent models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Invitation{},
		&models.Stage{},
		&models.Project{},
		&models.Collection{},
		&models.Folder{},
		&models.Photo{},
	)
}
