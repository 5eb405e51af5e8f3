package models

import "time"

// Dish is identified by its normalized name.
type Dish struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	Name      string     `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Allergens []Allergen `gorm:"many2many:dish_allergens;" json:"allergens"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PlateTemplate is a reusable dish suggestion ranked by how often it is used.
type PlateTemplate struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Name       string     `gorm:"size:255;uniqueIndex;not null" json:"name"`
	UsageCount int        `gorm:"not null;default:0" json:"usageCount"`
	Allergens  []Allergen `gorm:"many2many:plate_template_allergens;" json:"allergens"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
