package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportRun records the outcome of one menu import batch.
type ImportRun struct {
	ID               uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Source           string    `gorm:"size:50;not null" json:"source"`
	StartDate        time.Time `json:"startDate"`
	CreatedCount     int       `json:"createdCount"`
	SkippedCount     int       `json:"skippedCount"`
	ErrorCount       int       `json:"errorCount"`
	TemplatesCreated int       `json:"templatesCreated"`
	TemplatesUpdated int       `json:"templatesUpdated"`
	ArchiveKey       string    `gorm:"size:255" json:"archiveKey,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
}

func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
