package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

// MenuTemplateService manages named multi-week menu plans.
type MenuTemplateService struct {
	db *gorm.DB
}

func NewMenuTemplateService(db *gorm.DB) *MenuTemplateService {
	return &MenuTemplateService{db: db}
}

func preloadTemplate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Weeks", func(db *gorm.DB) *gorm.DB { return db.Order("week_number, id") }).
		Preload("Weeks.Days", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Weeks.Days.Meals", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Weeks.Days.Meals.Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Weeks.Days.Meals.Items.Dish").
		Preload("Weeks.Days.Meals.Items.Dish.Allergens")
}

// List returns templates newest first, without their contents.
func (s *MenuTemplateService) List(ctx context.Context) ([]models.MenuTemplate, error) {
	templates := []models.MenuTemplate{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu templates: %w", err)
	}
	return templates, nil
}

// Get returns a template with its weeks, days, meals and items.
func (s *MenuTemplateService) Get(ctx context.Context, id uint) (*models.MenuTemplate, error) {
	var tpl models.MenuTemplate
	if err := preloadTemplate(s.db.WithContext(ctx)).First(&tpl, id).Error; err != nil {
		return nil, lookupErr(err, "menu template")
	}
	return &tpl, nil
}

type dayKey struct {
	week int
	day  string
}

// ImportJSON stores a MenuData document as a new template. Days repeated
// within a week are merged and their meals concatenated by type.
func (s *MenuTemplateService) ImportJSON(ctx context.Context, name string, data *types.MenuData) (*types.TemplateImportStats, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("template name is required")
	}
	if err := data.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}
	for _, w := range data.Weeks {
		for _, d := range w.Days {
			for _, m := range d.Meals {
				if !models.ValidMealType(m.Type) {
					return nil, invalidf("week %d %s: invalid meal type %q", w.Week, d.Day, m.Type)
				}
			}
		}
	}

	stats := &types.TemplateImportStats{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MenuTemplate{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: menu template %q", ErrConflict, name)
		}

		dishIDs, err := resolveTemplateDishes(tx, data, stats)
		if err != nil {
			return err
		}

		tpl := models.MenuTemplate{Name: name, Weeks: buildTemplateWeeks(data, dishIDs, stats)}
		if err := tx.Create(&tpl).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: menu template %q", ErrConflict, name)
			}
			return err
		}
		stats.TemplateID = tpl.ID
		return nil
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "import menu template")
	}

	log.WithFields(log.Fields{
		"template": name,
		"weeks":    stats.Weeks,
		"days":     stats.Days,
		"items":    stats.Items,
	}).Info("menu template imported")
	return stats, nil
}

func resolveTemplateDishes(tx *gorm.DB, data *types.MenuData, stats *types.TemplateImportStats) (map[string]uint, error) {
	names := append([]string{}, data.Allergens...)
	perDish := make(map[string][]string)
	var order []string
	for _, w := range data.Weeks {
		for _, d := range w.Days {
			for _, m := range d.Meals {
				for _, item := range m.Items {
					n := strings.TrimSpace(item.Name)
					if n == "" {
						continue
					}
					if _, ok := perDish[n]; !ok {
						order = append(order, n)
					}
					perDish[n] = append(perDish[n], item.Allergens...)
					names = append(names, item.Allergens...)
				}
			}
		}
	}

	allergens, err := upsertAllergens(tx, names)
	if err != nil {
		return nil, err
	}
	stats.AllergensSeen = len(allergens)
	byName := make(map[string]models.Allergen, len(allergens))
	for _, a := range allergens {
		byName[a.Name] = a
	}

	ids := make(map[string]uint, len(order))
	for _, n := range order {
		var links []models.Allergen
		for _, a := range uniqueNames(perDish[n]) {
			links = append(links, byName[a])
		}
		dish, created, err := ensureDish(tx, n, links)
		if err != nil {
			return nil, err
		}
		if created {
			stats.DishesCreated++
		}
		ids[n] = dish.ID
	}
	return ids, nil
}

func buildTemplateWeeks(data *types.MenuData, dishIDs map[string]uint, stats *types.TemplateImportStats) []models.MenuTemplateWeek {
	weeks := map[int]*models.MenuTemplateWeek{}
	days := map[dayKey]*models.MenuTemplateDay{}
	var weekOrder []int
	dayOrder := map[int][]string{}

	for _, w := range data.Weeks {
		if _, ok := weeks[w.Week]; !ok {
			weeks[w.Week] = &models.MenuTemplateWeek{WeekNumber: w.Week}
			weekOrder = append(weekOrder, w.Week)
		}
		for _, d := range w.Days {
			label := strings.ToUpper(strings.TrimSpace(d.Day))
			key := dayKey{week: w.Week, day: label}
			day, ok := days[key]
			if ok {
				stats.DuplicateMerged++
			} else {
				day = &models.MenuTemplateDay{Day: label}
				days[key] = day
				dayOrder[w.Week] = append(dayOrder[w.Week], label)
			}
			for _, m := range d.Meals {
				mergeTemplateMeal(day, m, dishIDs)
			}
		}
	}

	sort.Ints(weekOrder)
	out := make([]models.MenuTemplateWeek, 0, len(weekOrder))
	for _, n := range weekOrder {
		week := weeks[n]
		for _, label := range dayOrder[n] {
			day := days[dayKey{week: n, day: label}]
			week.Days = append(week.Days, *day)
			stats.Days++
			stats.Meals += len(day.Meals)
			for _, m := range day.Meals {
				stats.Items += len(m.Items)
			}
		}
		out = append(out, *week)
	}
	stats.Weeks = len(out)
	return out
}

func mergeTemplateMeal(day *models.MenuTemplateDay, m types.MenuMeal, dishIDs map[string]uint) {
	var meal *models.MenuTemplateMeal
	for i := range day.Meals {
		if day.Meals[i].Type == m.Type {
			meal = &day.Meals[i]
			break
		}
	}
	if meal == nil {
		day.Meals = append(day.Meals, models.MenuTemplateMeal{Type: m.Type})
		meal = &day.Meals[len(day.Meals)-1]
	}
	for _, item := range m.Items {
		id, ok := dishIDs[strings.TrimSpace(item.Name)]
		if !ok {
			continue
		}
		meal.Items = append(meal.Items, models.MenuTemplateMealItem{DishID: id, Order: len(meal.Items)})
	}
}

// Rename changes a template's name.
func (s *MenuTemplateService) Rename(ctx context.Context, id uint, name string) (*models.MenuTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("template name is required")
	}
	res := s.db.WithContext(ctx).Model(&models.MenuTemplate{}).Where("id = ?", id).Update("name", name)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: menu template %q", ErrConflict, name)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("failed to rename menu template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundf("menu template")
	}
	var tpl models.MenuTemplate
	if err := s.db.WithContext(ctx).First(&tpl, id).Error; err != nil {
		return nil, lookupErr(err, "menu template")
	}
	return &tpl, nil
}

// Delete removes a template and everything below it. Dishes are kept.
func (s *MenuTemplateService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tpl models.MenuTemplate
		if err := tx.First(&tpl, id).Error; err != nil {
			return lookupErr(err, "menu template")
		}
		weekIDs := tx.Model(&models.MenuTemplateWeek{}).Select("id").Where("template_id = ?", id)
		dayIDs := tx.Model(&models.MenuTemplateDay{}).Select("id").Where("week_id IN (?)", weekIDs)
		mealIDs := tx.Model(&models.MenuTemplateMeal{}).Select("id").Where("day_id IN (?)", dayIDs)

		steps := []struct {
			model interface{}
			query string
			arg   interface{}
		}{
			{&models.MenuTemplateMealItem{}, "meal_id IN (?)", mealIDs},
			{&models.MenuTemplateMeal{}, "day_id IN (?)", dayIDs},
			{&models.MenuTemplateDay{}, "week_id IN (?)", weekIDs},
			{&models.MenuTemplateWeek{}, "template_id = ?", id},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.arg).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete menu template contents: %w", err)
			}
		}
		return tx.Delete(&tpl).Error
	})
}

// ReplaceMealItems sets the items of one meal of a template, creating the
// week, day and meal when they do not exist yet.
func (s *MenuTemplateService) ReplaceMealItems(ctx context.Context, id uint, weekNumber int, day, mealType string, items []types.TemplateItemInput) (*models.MenuTemplateMeal, error) {
	day = strings.ToUpper(strings.TrimSpace(day))
	if day == "" {
		return nil, invalidf("day is required")
	}
	if !models.ValidMealType(mealType) {
		return nil, invalidf("invalid meal type %q", mealType)
	}

	var mealID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tpl models.MenuTemplate
		if err := tx.First(&tpl, id).Error; err != nil {
			return lookupErr(err, "menu template")
		}

		var week models.MenuTemplateWeek
		if _, err := firstOrCreate(tx, &week,
			map[string]interface{}{"template_id": id, "week_number": weekNumber},
			models.MenuTemplateWeek{TemplateID: id, WeekNumber: weekNumber}); err != nil {
			return err
		}
		var d models.MenuTemplateDay
		if _, err := firstOrCreate(tx, &d,
			map[string]interface{}{"week_id": week.ID, "day": day},
			models.MenuTemplateDay{WeekID: week.ID, Day: day}); err != nil {
			return err
		}
		var meal models.MenuTemplateMeal
		if _, err := firstOrCreate(tx, &meal,
			map[string]interface{}{"day_id": d.ID, "type": mealType},
			models.MenuTemplateMeal{DayID: d.ID, Type: mealType}); err != nil {
			return err
		}
		mealID = meal.ID

		if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.MenuTemplateMealItem{}).Error; err != nil {
			return err
		}
		rows := make([]models.MenuTemplateMealItem, 0, len(items))
		for i, in := range items {
			var dish models.Dish
			if err := tx.Select("id").First(&dish, in.DishID).Error; err != nil {
				return lookupErr(err, fmt.Sprintf("dish %d", in.DishID))
			}
			order := in.Order
			if order == 0 {
				order = i
			}
			rows = append(rows, models.MenuTemplateMealItem{MealID: meal.ID, DishID: dish.ID, Order: order})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "replace template meal items")
	}
	return s.loadMeal(ctx, mealID)
}

// ReorderMealItems assigns positions following itemIDs. Every id must
// belong to the meal.
func (s *MenuTemplateService) ReorderMealItems(ctx context.Context, mealID uint, itemIDs []uint) (*models.MenuTemplateMeal, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meal models.MenuTemplateMeal
		if err := tx.First(&meal, mealID).Error; err != nil {
			return lookupErr(err, "template meal")
		}
		var count int64
		if err := tx.Model(&models.MenuTemplateMealItem{}).Where("meal_id = ? AND id IN ?", mealID, itemIDs).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(uniqueIDs(itemIDs)) {
			return invalidf("every item must belong to template meal %d", mealID)
		}
		for pos, itemID := range itemIDs {
			if err := tx.Model(&models.MenuTemplateMealItem{}).Where("id = ?", itemID).Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "reorder template meal items")
	}
	return s.loadMeal(ctx, mealID)
}

// ReplaceItemDish points a template item at the named dish, creating it
// when needed. Only allergens that already exist are linked.
func (s *MenuTemplateService) ReplaceItemDish(ctx context.Context, itemID uint, name string, allergenNames []string) (*models.MenuTemplateMealItem, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuTemplateMealItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return lookupErr(err, "template item")
		}
		allergens, err := existingAllergens(tx, allergenNames)
		if err != nil {
			return err
		}
		dish, _, err := ensureDish(tx, name, allergens)
		if err != nil {
			return err
		}
		return tx.Model(&item).Update("dish_id", dish.ID).Error
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "replace template item dish")
	}
	var item models.MenuTemplateMealItem
	if err := s.db.WithContext(ctx).Preload("Dish.Allergens").First(&item, itemID).Error; err != nil {
		return nil, lookupErr(err, "template item")
	}
	return &item, nil
}

func (s *MenuTemplateService) loadMeal(ctx context.Context, id uint) (*models.MenuTemplateMeal, error) {
	var meal models.MenuTemplateMeal
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Items.Dish.Allergens").
		First(&meal, id).Error
	if err != nil {
		return nil, lookupErr(err, "template meal")
	}
	return &meal, nil
}

// templateMenuData converts a stored template back into a MenuData document.
func templateMenuData(db *gorm.DB, id uint) (*types.MenuData, error) {
	var tpl models.MenuTemplate
	if err := preloadTemplate(db).First(&tpl, id).Error; err != nil {
		return nil, lookupErr(err, "menu template")
	}

	data := &types.MenuData{Allergens: []string{}}
	for _, w := range tpl.Weeks {
		week := types.MenuWeek{Week: w.WeekNumber}
		for _, d := range w.Days {
			day := types.MenuDay{Day: d.Day}
			for _, m := range d.Meals {
				meal := types.MenuMeal{Type: m.Type}
				for _, item := range m.Items {
					if item.Dish == nil {
						continue
					}
					meal.Items = append(meal.Items, types.MenuItem{
						Name:      item.Dish.Name,
						Allergens: models.AllergenNames(item.Dish.Allergens),
					})
				}
				day.Meals = append(day.Meals, meal)
			}
			week.Days = append(week.Days, day)
		}
		data.Weeks = append(data.Weeks, week)
	}
	return data, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
