package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
)

// firstOrCreate finds the row matching conds, creating init when missing.
// A concurrent insert of the same unique key is resolved by reading the
// winner's row.
func firstOrCreate[T any](db *gorm.DB, out *T, conds map[string]interface{}, init T) (bool, error) {
	err := db.Where(conds).First(out).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	*out = init
	if err := db.Create(out).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, db.Where(conds).First(out).Error
		}
		return false, err
	}
	return true, nil
}

// uniqueNames trims names and drops blanks and repeats, keeping first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// upsertAllergens returns one row per distinct name, creating missing ones.
func upsertAllergens(db *gorm.DB, names []string) ([]models.Allergen, error) {
	names = uniqueNames(names)
	out := make([]models.Allergen, 0, len(names))
	for _, name := range names {
		var a models.Allergen
		if _, err := firstOrCreate(db, &a, map[string]interface{}{"name": name}, models.Allergen{Name: name}); err != nil {
			return nil, fmt.Errorf("failed to upsert allergen %q: %w", name, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// existingAllergens returns the rows of the names that already exist.
func existingAllergens(db *gorm.DB, names []string) ([]models.Allergen, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return []models.Allergen{}, nil
	}
	var out []models.Allergen
	if err := db.Where("name IN ?", names).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load allergens: %w", err)
	}
	return out, nil
}

// ensureDish finds or creates the dish and adds any missing allergen links.
// Existing links are never removed.
func ensureDish(db *gorm.DB, name string, allergens []models.Allergen) (*models.Dish, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, invalidf("dish name is required")
	}

	var dish models.Dish
	created, err := firstOrCreate(db, &dish, map[string]interface{}{"name": name}, models.Dish{Name: name})
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert dish %q: %w", name, err)
	}
	if len(allergens) > 0 {
		err := db.Model(&dish).Association("Allergens").Append(allergens)
		if err != nil {
			return nil, false, fmt.Errorf("failed to link allergens to dish %q: %w", name, err)
		}
	}
	return &dish, created, nil
}

// bumpPlateTemplate counts one more use of the named plate template, creating
// it with the given allergens on first use.
func bumpPlateTemplate(db *gorm.DB, name string, allergens []models.Allergen) (bool, error) {
	res := db.Model(&models.PlateTemplate{}).
		Where("name = ?", name).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return false, fmt.Errorf("failed to update plate template %q: %w", name, res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	pt := models.PlateTemplate{Name: name, UsageCount: 1, Allergens: allergens}
	err := db.Omit("Allergens.*").Create(&pt).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return bumpPlateTemplate(db, name, nil)
	}
	if err != nil {
		return false, fmt.Errorf("failed to create plate template %q: %w", name, err)
	}
	return true, nil
}
