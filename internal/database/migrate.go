package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Allergen{},
		&models.Dish{},
		&models.PlateTemplate{},
		&models.Menu{},
		&models.Meal{},
		&models.MealItem{},
		&models.MenuTemplate{},
		&models.MenuTemplateWeek{},
		&models.MenuTemplateDay{},
		&models.MenuTemplateMeal{},
		&models.MenuTemplateMealItem{},
		&models.Setting{},
		&models.ImportRun{},
	}
}

// RunMigrations brings the schema up to date.
func RunMigrations(db *gorm.DB) error {
	log.Printf("Running auto-migration on %s", db.Dialector.Name())
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
