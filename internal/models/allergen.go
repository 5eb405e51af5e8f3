package models

import "time"

// Allergen is a named allergen category shared by dishes and plate templates.
type Allergen struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// AllergenNames returns the names of the given allergens in order.
func AllergenNames(allergens []Allergen) []string {
	names := make([]string, 0, len(allergens))
	for _, a := range allergens {
		names = append(names, a.Name)
	}
	return names
}
