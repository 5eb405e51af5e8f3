package models

import "time"

// MenuTemplate is a named multi-week menu plan that can be applied to a calendar.
type MenuTemplate struct {
	ID        uint               `gorm:"primarykey" json:"id"`
	Name      string             `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Weeks     []MenuTemplateWeek `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE;" json:"weeks"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type MenuTemplateWeek struct {
	ID         uint              `gorm:"primarykey" json:"id"`
	TemplateID uint              `gorm:"index;not null" json:"templateId"`
	WeekNumber int               `gorm:"not null" json:"weekNumber"`
	Days       []MenuTemplateDay `gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE;" json:"days"`
}

type MenuTemplateDay struct {
	ID     uint               `gorm:"primarykey" json:"id"`
	WeekID uint               `gorm:"index;not null" json:"weekId"`
	Day    string             `gorm:"size:10;not null" json:"day"`
	Meals  []MenuTemplateMeal `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE;" json:"meals"`
}

type MenuTemplateMeal struct {
	ID    uint                   `gorm:"primarykey" json:"id"`
	DayID uint                   `gorm:"index;not null" json:"dayId"`
	Type  string                 `gorm:"size:20;not null" json:"type"`
	Items []MenuTemplateMealItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE;" json:"items"`
}

type MenuTemplateMealItem struct {
	ID     uint  `gorm:"primarykey" json:"id"`
	MealID uint  `gorm:"index;not null" json:"mealId"`
	DishID uint  `gorm:"index;not null" json:"dishId"`
	Dish   *Dish `json:"dish,omitempty"`
	Order  int   `gorm:"column:position;not null;default:0" json:"order"`
}
