package models

import "time"

// Setting is a free-form key/value pair edited from the admin screen.
type Setting struct {
	Key       string    `gorm:"primarykey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
