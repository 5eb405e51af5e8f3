package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/comedor/backend/internal/models"
)

// SettingsService stores free-form key/value application settings.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidf("setting key is required")
	}
	var row models.Setting
	if err := s.db.WithContext(ctx).Where(&models.Setting{Key: key}).First(&row).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("setting %q", key))
	}
	return &row, nil
}

func (s *SettingsService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	if err := setSetting(s.db.WithContext(ctx), key, value); err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}

// SetMany writes every pair in one transaction.
func (s *SettingsService) SetMany(ctx context.Context, values map[string]string) (map[string]string, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			if err := setSetting(tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.All(ctx)
}

func setSetting(db *gorm.DB, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return invalidf("setting key is required")
	}
	row := models.Setting{Key: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}
	return nil
}
