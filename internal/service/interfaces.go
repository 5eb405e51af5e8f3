package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	TTL() time.Duration
}

// IMenuService defines the interface for manual menu editing
type IMenuService interface {
	List(ctx context.Context, start, end *time.Time) ([]models.Menu, error)
	GetByDate(ctx context.Context, date time.Time) (*models.Menu, error)
	Get(ctx context.Context, id uint) (*models.Menu, error)
	Create(ctx context.Context, req *types.MenuRequest) (*models.Menu, error)
	Update(ctx context.Context, id uint, req *types.MenuRequest) (*models.Menu, error)
	Delete(ctx context.Context, id uint) error
	DeleteRange(ctx context.Context, start, end time.Time) ([]string, error)
	AddMeal(ctx context.Context, menuID uint, input *types.MealInput) (*models.Meal, error)
	AddMealItem(ctx context.Context, menuID, mealID uint, input *types.MealItemInput) (*models.MealItem, error)
	UpdateMealItem(ctx context.Context, menuID, mealID, itemID uint, input *types.MealItemInput) (*models.MealItem, error)
	DeleteMealItem(ctx context.Context, menuID, mealID, itemID uint) error
}

// IImportService defines the interface for calendar imports
type IImportService interface {
	Import(ctx context.Context, data *types.MenuData, opts ImportOptions) (*types.ImportSummary, error)
	ImportTemplate(ctx context.Context, templateID uint, start time.Time) (*types.ImportSummary, error)
	Runs(ctx context.Context, limit int) ([]models.ImportRun, error)
	Run(ctx context.Context, id string) (*models.ImportRun, error)
}

// IDishService defines the interface for dish operations
type IDishService interface {
	List(ctx context.Context) ([]models.Dish, error)
	Search(ctx context.Context, query string) ([]models.Dish, error)
	Get(ctx context.Context, id uint) (*models.Dish, error)
	ReplaceAllergens(ctx context.Context, id uint, names []string) (*models.Dish, error)
}

// IAllergenService defines the interface for allergen operations
type IAllergenService interface {
	List(ctx context.Context) ([]models.Allergen, error)
	Infer(name string) []string
}

// IPlateTemplateService defines the interface for plate template operations
type IPlateTemplateService interface {
	List(ctx context.Context) ([]models.PlateTemplate, error)
	Search(ctx context.Context, query string) ([]models.PlateTemplate, error)
	Upsert(ctx context.Context, req *types.PlateTemplateRequest) (*models.PlateTemplate, error)
	Use(ctx context.Context, id uint) (*models.PlateTemplate, error)
}

// IMenuTemplateService defines the interface for menu template operations
type IMenuTemplateService interface {
	List(ctx context.Context) ([]models.MenuTemplate, error)
	Get(ctx context.Context, id uint) (*models.MenuTemplate, error)
	ImportJSON(ctx context.Context, name string, data *types.MenuData) (*types.TemplateImportStats, error)
	Rename(ctx context.Context, id uint, name string) (*models.MenuTemplate, error)
	Delete(ctx context.Context, id uint) error
	ReplaceMealItems(ctx context.Context, id uint, weekNumber int, day, mealType string, items []types.TemplateItemInput) (*models.MenuTemplateMeal, error)
	ReorderMealItems(ctx context.Context, mealID uint, itemIDs []uint) (*models.MenuTemplateMeal, error)
	ReplaceItemDish(ctx context.Context, itemID uint, name string, allergens []string) (*models.MenuTemplateMealItem, error)
}

// ISettingsService defines the interface for settings operations
type ISettingsService interface {
	All(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) (*models.Setting, error)
	SetMany(ctx context.Context, values map[string]string) (map[string]string, error)
}
