package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/schedule"
	"github.com/pageza/comedor/backend/internal/types"
)

// MenuService handles manual menu editing.
type MenuService struct {
	db *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{db: db}
}

func preloadMenu(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Meals", func(db *gorm.DB) *gorm.DB { return db.Order("meals.id") }).
		Preload("Meals.Items", func(db *gorm.DB) *gorm.DB { return db.Order("meal_items.position, meal_items.id") }).
		Preload("Meals.Items.Dish").
		Preload("Meals.Items.Dish.Allergens")
}

// List returns menus ordered by date, optionally bounded on either side.
func (s *MenuService) List(ctx context.Context, start, end *time.Time) ([]models.Menu, error) {
	q := preloadMenu(s.db.WithContext(ctx)).Order("date")
	if start != nil {
		q = q.Where("date >= ?", datatypes.Date(schedule.Midnight(*start)))
	}
	if end != nil {
		q = q.Where("date <= ?", datatypes.Date(schedule.Midnight(*end)))
	}
	menus := []models.Menu{}
	if err := q.Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	return menus, nil
}

// GetByDate returns the menu served on date.
func (s *MenuService) GetByDate(ctx context.Context, date time.Time) (*models.Menu, error) {
	var menu models.Menu
	err := preloadMenu(s.db.WithContext(ctx)).
		Where("date = ?", datatypes.Date(schedule.Midnight(date))).
		First(&menu).Error
	if err != nil {
		return nil, lookupErr(err, "menu")
	}
	return &menu, nil
}

// Get returns a menu by id.
func (s *MenuService) Get(ctx context.Context, id uint) (*models.Menu, error) {
	var menu models.Menu
	if err := preloadMenu(s.db.WithContext(ctx)).First(&menu, id).Error; err != nil {
		return nil, lookupErr(err, "menu")
	}
	return &menu, nil
}

// Create stores a new menu. Items naming unknown dishes create them.
func (s *MenuService) Create(ctx context.Context, req *types.MenuRequest) (*models.Menu, error) {
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	menu := models.Menu{Date: datatypes.Date(date)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meals, err := buildMeals(tx, req.Meals)
		if err != nil {
			return err
		}
		menu.Meals = meals
		return tx.Create(&menu).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: menu for %s", ErrConflict, schedule.FormatDate(date))
	}
	if err != nil {
		return nil, wrapUnlessSentinel(err, "create menu")
	}
	return s.Get(ctx, menu.ID)
}

// Update replaces the date (when given) and every meal of a menu.
func (s *MenuService) Update(ctx context.Context, id uint, req *types.MenuRequest) (*models.Menu, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, id).Error; err != nil {
			return lookupErr(err, "menu")
		}
		if strings.TrimSpace(req.Date) != "" {
			date, err := schedule.ParseDate(req.Date)
			if err != nil {
				return invalidf("%v", err)
			}
			if err := tx.Model(&menu).Update("date", datatypes.Date(date)).Error; err != nil {
				return err
			}
		}

		meals, err := buildMeals(tx, req.Meals)
		if err != nil {
			return err
		}
		if err := deleteMeals(tx, tx.Model(&models.Meal{}).Select("id").Where("menu_id = ?", id)); err != nil {
			return err
		}
		for i := range meals {
			meals[i].MenuID = id
		}
		if len(meals) > 0 {
			return tx.Create(&meals).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: another menu uses that date", ErrConflict)
	}
	if err != nil {
		return nil, wrapUnlessSentinel(err, "update menu")
	}
	return s.Get(ctx, id)
}

// Delete removes a menu with its meals and items. Dishes are kept.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, id).Error; err != nil {
			return lookupErr(err, "menu")
		}
		if err := deleteMeals(tx, tx.Model(&models.Meal{}).Select("id").Where("menu_id = ?", id)); err != nil {
			return err
		}
		return tx.Delete(&menu).Error
	})
}

// DeleteRange removes every menu between start and end inclusive and
// returns the removed dates.
func (s *MenuService) DeleteRange(ctx context.Context, start, end time.Time) ([]string, error) {
	start, end = schedule.Midnight(start), schedule.Midnight(end)
	if end.Before(start) {
		return nil, invalidf("end date is before start date")
	}
	var removed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = deleteMenusBetween(tx, start, end)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete menus: %w", err)
	}
	return removed, nil
}

// AddMeal appends a meal to a menu.
func (s *MenuService) AddMeal(ctx context.Context, menuID uint, input *types.MealInput) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, menuID).Error; err != nil {
			return lookupErr(err, "menu")
		}
		meals, err := buildMeals(tx, []types.MealInput{*input})
		if err != nil {
			return err
		}
		meal = meals[0]
		meal.MenuID = menuID
		return tx.Create(&meal).Error
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "add meal")
	}
	return &meal, nil
}

// AddMealItem places a dish in a meal of a menu.
func (s *MenuService) AddMealItem(ctx context.Context, menuID, mealID uint, input *types.MealItemInput) (*models.MealItem, error) {
	var item models.MealItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findMeal(tx, menuID, mealID); err != nil {
			return err
		}
		dishID, err := resolveItemDish(tx, input)
		if err != nil {
			return err
		}
		item = models.MealItem{MealID: mealID, DishID: dishID, Order: input.Order}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "add meal item")
	}
	return s.loadItem(ctx, item.ID)
}

// UpdateMealItem changes the dish or position of an item.
func (s *MenuService) UpdateMealItem(ctx context.Context, menuID, mealID, itemID uint, input *types.MealItemInput) (*models.MealItem, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findMealItem(tx, menuID, mealID, itemID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{"position": input.Order}
		if input.DishID != 0 || strings.TrimSpace(input.Name) != "" {
			dishID, err := resolveItemDish(tx, input)
			if err != nil {
				return err
			}
			updates["dish_id"] = dishID
		}
		return tx.Model(item).Updates(updates).Error
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "update meal item")
	}
	return s.loadItem(ctx, itemID)
}

// DeleteMealItem removes an item from a meal. The dish is kept.
func (s *MenuService) DeleteMealItem(ctx context.Context, menuID, mealID, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findMealItem(tx, menuID, mealID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
}

func (s *MenuService) loadItem(ctx context.Context, id uint) (*models.MealItem, error) {
	var item models.MealItem
	if err := s.db.WithContext(ctx).Preload("Dish.Allergens").First(&item, id).Error; err != nil {
		return nil, lookupErr(err, "meal item")
	}
	return &item, nil
}

func findMeal(tx *gorm.DB, menuID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	if err := tx.Where("id = ? AND menu_id = ?", mealID, menuID).First(&meal).Error; err != nil {
		return nil, lookupErr(err, "meal")
	}
	return &meal, nil
}

func findMealItem(tx *gorm.DB, menuID, mealID, itemID uint) (*models.MealItem, error) {
	if _, err := findMeal(tx, menuID, mealID); err != nil {
		return nil, err
	}
	var item models.MealItem
	if err := tx.Where("id = ? AND meal_id = ?", itemID, mealID).First(&item).Error; err != nil {
		return nil, lookupErr(err, "meal item")
	}
	return &item, nil
}

// buildMeals resolves every item's dish before any menu row is written.
func buildMeals(tx *gorm.DB, inputs []types.MealInput) ([]models.Meal, error) {
	meals := make([]models.Meal, 0, len(inputs))
	for _, in := range inputs {
		if !models.ValidMealType(in.Type) {
			return nil, invalidf("invalid meal type %q", in.Type)
		}
		meal := models.Meal{Type: in.Type}
		for i := range in.Items {
			dishID, err := resolveItemDish(tx, &in.Items[i])
			if err != nil {
				return nil, err
			}
			order := in.Items[i].Order
			if order == 0 {
				order = i
			}
			meal.Items = append(meal.Items, models.MealItem{DishID: dishID, Order: order})
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

// resolveItemDish returns the referenced dish id, or finds or creates the
// named dish and merges the given allergens into it.
func resolveItemDish(tx *gorm.DB, in *types.MealItemInput) (uint, error) {
	if in.DishID != 0 {
		var dish models.Dish
		if err := tx.Select("id").First(&dish, in.DishID).Error; err != nil {
			return 0, lookupErr(err, fmt.Sprintf("dish %d", in.DishID))
		}
		return dish.ID, nil
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, invalidf("meal item needs a dishId or a name")
	}
	allergens, err := upsertAllergens(tx, in.Allergens)
	if err != nil {
		return 0, err
	}
	dish, _, err := ensureDish(tx, in.Name, allergens)
	if err != nil {
		return 0, err
	}
	return dish.ID, nil
}

// deleteMeals removes the meals selected by ids together with their items.
func deleteMeals(tx *gorm.DB, ids *gorm.DB) error {
	if err := tx.Where("meal_id IN (?)", ids).Delete(&models.MealItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete meal items: %w", err)
	}
	if err := tx.Where("id IN (?)", ids).Delete(&models.Meal{}).Error; err != nil {
		return fmt.Errorf("failed to delete meals: %w", err)
	}
	return nil
}

// deleteMenusBetween removes the menus dated in [start, end] and their children.
func deleteMenusBetween(tx *gorm.DB, start, end time.Time) ([]string, error) {
	var menus []models.Menu
	err := tx.Where("date >= ? AND date <= ?", datatypes.Date(start), datatypes.Date(end)).
		Order("date").Find(&menus).Error
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, len(menus))
	if len(menus) == 0 {
		return removed, nil
	}

	ids := make([]uint, 0, len(menus))
	for _, m := range menus {
		ids = append(ids, m.ID)
		removed = append(removed, m.DateString())
	}
	if err := deleteMeals(tx, tx.Model(&models.Meal{}).Select("id").Where("menu_id IN ?", ids)); err != nil {
		return nil, err
	}
	if err := tx.Delete(&models.Menu{}, ids).Error; err != nil {
		return nil, err
	}
	return removed, nil
}

// wrapUnlessSentinel keeps service sentinels visible to callers and adds
// context to storage errors.
func wrapUnlessSentinel(err error, action string) error {
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrInvalidInput} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
