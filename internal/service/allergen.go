package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/allergen"
	"github.com/pageza/comedor/backend/internal/models"
)

// AllergenService lists allergens and exposes the name-based inferencer.
type AllergenService struct {
	db *gorm.DB
}

func NewAllergenService(db *gorm.DB) *AllergenService {
	return &AllergenService{db: db}
}

func (s *AllergenService) List(ctx context.Context) ([]models.Allergen, error) {
	allergens := []models.Allergen{}
	if err := s.db.WithContext(ctx).Order("name").Find(&allergens).Error; err != nil {
		return nil, fmt.Errorf("failed to list allergens: %w", err)
	}
	return allergens, nil
}

// Infer returns the allergen categories suggested by a dish name.
func (s *AllergenService) Infer(name string) []string {
	return allergen.Infer(name)
}

// EnsureCategories creates the known allergen categories that are missing.
func (s *AllergenService) EnsureCategories(ctx context.Context) (int, error) {
	created := 0
	db := s.db.WithContext(ctx)
	for _, name := range allergen.Categories {
		var a models.Allergen
		ok, err := firstOrCreate(db, &a, map[string]interface{}{"name": name}, models.Allergen{Name: name})
		if err != nil {
			return created, fmt.Errorf("failed to seed allergen %q: %w", name, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
