package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

// PlateTemplateService manages reusable dish suggestions.
type PlateTemplateService struct {
	db *gorm.DB
}

func NewPlateTemplateService(db *gorm.DB) *PlateTemplateService {
	return &PlateTemplateService{db: db}
}

func orderByUsage(db *gorm.DB) *gorm.DB {
	return db.Preload("Allergens").Order("usage_count DESC").Order("name")
}

func (s *PlateTemplateService) List(ctx context.Context) ([]models.PlateTemplate, error) {
	templates := []models.PlateTemplate{}
	if err := orderByUsage(s.db.WithContext(ctx)).Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list plate templates: %w", err)
	}
	return templates, nil
}

// Search returns the most used templates whose name contains query.
func (s *PlateTemplateService) Search(ctx context.Context, query string) ([]models.PlateTemplate, error) {
	pattern, err := containsPattern(query)
	if err != nil {
		return nil, err
	}
	templates := []models.PlateTemplate{}
	err = orderByUsage(s.db.WithContext(ctx)).
		Where("LOWER(name) LIKE ?", pattern).
		Limit(plateSearchLimit).
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search plate templates: %w", err)
	}
	return templates, nil
}

// Upsert creates the named template or counts another use of it. The
// allergen set is replaced when one is given.
func (s *PlateTemplateService) Upsert(ctx context.Context, req *types.PlateTemplateRequest) (*models.PlateTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("name is required")
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allergens, err := upsertAllergens(tx, req.Allergens)
		if err != nil {
			return err
		}
		if _, err := bumpPlateTemplate(tx, name, allergens); err != nil {
			return err
		}
		var pt models.PlateTemplate
		if err := tx.Where("name = ?", name).First(&pt).Error; err != nil {
			return err
		}
		id = pt.ID
		if req.Allergens != nil {
			return tx.Model(&pt).Association("Allergens").Replace(allergens)
		}
		return nil
	})
	if err != nil {
		return nil, wrapUnlessSentinel(err, "upsert plate template")
	}
	return s.get(ctx, id)
}

// Use counts one more use of a template.
func (s *PlateTemplateService) Use(ctx context.Context, id uint) (*models.PlateTemplate, error) {
	res := s.db.WithContext(ctx).Model(&models.PlateTemplate{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update plate template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundf("plate template")
	}
	return s.get(ctx, id)
}

func (s *PlateTemplateService) get(ctx context.Context, id uint) (*models.PlateTemplate, error) {
	var pt models.PlateTemplate
	err := s.db.WithContext(ctx).Preload("Allergens").First(&pt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("plate template")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plate template: %w", err)
	}
	return &pt, nil
}
