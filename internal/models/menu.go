package models

import (
	"time"

	"gorm.io/datatypes"
)

// Meal types accepted by menus and templates.
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
)

// ValidMealType reports whether t is one of the known meal types.
func ValidMealType(t string) bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner:
		return true
	}
	return false
}

// Menu holds the meals served on one calendar date.
type Menu struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Date      datatypes.Date `gorm:"uniqueIndex;not null" json:"date"`
	Meals     []Meal         `gorm:"constraint:OnDelete:CASCADE;" json:"meals"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Meal is one sitting of a menu.
type Meal struct {
	ID     uint       `gorm:"primarykey" json:"id"`
	MenuID uint       `gorm:"index;not null" json:"menuId"`
	Type   string     `gorm:"size:20;not null" json:"type"`
	Items  []MealItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
}

// MealItem places a dish in a meal. Deleting it never deletes the dish.
type MealItem struct {
	ID     uint  `gorm:"primarykey" json:"id"`
	MealID uint  `gorm:"index;not null" json:"mealId"`
	DishID uint  `gorm:"index;not null" json:"dishId"`
	Dish   *Dish `json:"dish,omitempty"`
	Order  int   `gorm:"column:position;not null;default:0" json:"order"`
}

// DateString formats the menu date as YYYY-MM-DD.
func (m *Menu) DateString() string {
	return time.Time(m.Date).UTC().Format(time.DateOnly)
}
