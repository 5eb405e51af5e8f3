package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
)

const (
	minSearchLength  = 2
	dishSearchLimit  = 15
	plateSearchLimit = 10
)

// DishService handles dish lookups and allergen edits.
type DishService struct {
	db *gorm.DB
}

func NewDishService(db *gorm.DB) *DishService {
	return &DishService{db: db}
}

func (s *DishService) List(ctx context.Context) ([]models.Dish, error) {
	dishes := []models.Dish{}
	if err := s.db.WithContext(ctx).Preload("Allergens").Order("name").Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

// Search returns dishes whose name contains query, case-insensitively.
func (s *DishService) Search(ctx context.Context, query string) ([]models.Dish, error) {
	pattern, err := containsPattern(query)
	if err != nil {
		return nil, err
	}
	dishes := []models.Dish{}
	err = s.db.WithContext(ctx).Preload("Allergens").
		Where("LOWER(name) LIKE ?", pattern).
		Order("name").Limit(dishSearchLimit).
		Find(&dishes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search dishes: %w", err)
	}
	return dishes, nil
}

func (s *DishService) Get(ctx context.Context, id uint) (*models.Dish, error) {
	var dish models.Dish
	if err := s.db.WithContext(ctx).Preload("Allergens").First(&dish, id).Error; err != nil {
		return nil, lookupErr(err, "dish")
	}
	return &dish, nil
}

// ReplaceAllergens sets the dish's allergens to exactly names, creating
// allergens that do not exist yet.
func (s *DishService) ReplaceAllergens(ctx context.Context, id uint, names []string) (*models.Dish, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dish models.Dish
		if err := tx.First(&dish, id).Error; err != nil {
			return lookupErr(err, "dish")
		}
		allergens, err := upsertAllergens(tx, names)
		if err != nil {
			return err
		}
		return tx.Model(&dish).Association("Allergens").Replace(allergens)
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "replace dish allergens")
	}
	return s.Get(ctx, id)
}

func containsPattern(query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < minSearchLength {
		return "", invalidf("search query must have at least %d characters", minSearchLength)
	}
	return "%" + q + "%", nil
}
