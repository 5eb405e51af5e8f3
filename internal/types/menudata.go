package types

import (
	"errors"
	"fmt"
	"strings"
)

// MenuData is the intermediate JSON document produced by the CSV pipeline
// and consumed by the importer.
type MenuData struct {
	Allergens []string   `json:"allergens"`
	Weeks     []MenuWeek `json:"weeks"`
}

type MenuWeek struct {
	Week int       `json:"week"`
	Days []MenuDay `json:"days"`
}

type MenuDay struct {
	Day   string     `json:"day"`
	Meals []MenuMeal `json:"meals"`
}

type MenuMeal struct {
	Type  string     `json:"type"`
	Items []MenuItem `json:"items"`
}

type MenuItem struct {
	Name      string   `json:"name"`
	Allergens []string `json:"allergens"`
}

// ErrEmptyMenuData is returned when a document carries no weeks at all.
var ErrEmptyMenuData = errors.New("menu data has no weeks")

// Validate checks the structural shape of the document. Unknown day labels
// are not rejected here; the importer skips them per day.
func (d *MenuData) Validate() error {
	if d == nil || len(d.Weeks) == 0 {
		return ErrEmptyMenuData
	}
	for _, w := range d.Weeks {
		if w.Week < 0 {
			return fmt.Errorf("week %d: week number must not be negative", w.Week)
		}
		for _, day := range w.Days {
			if strings.TrimSpace(day.Day) == "" {
				return fmt.Errorf("week %d: day label is required", w.Week)
			}
		}
	}
	return nil
}

// ItemCount returns the number of dish placements in the document.
func (d *MenuData) ItemCount() int {
	n := 0
	for _, w := range d.Weeks {
		for _, day := range w.Days {
			for _, m := range day.Meals {
				n += len(m.Items)
			}
		}
	}
	return n
}
