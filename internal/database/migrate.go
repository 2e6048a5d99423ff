package database

import (
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/models"
)

// RunMigrations brings the schema up to date for all application models.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.Chat{},
		&models.Message{},
		&models.Dish{},
		&models.MealPlan{},
		&models.MealPlanEntry{},
	)
}
