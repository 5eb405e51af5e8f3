package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

// CreateTestUser stores an operator with a bcrypt password hash.
func CreateTestUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func item(name string, allergens ...string) types.MenuItem {
	if allergens == nil {
		allergens = []string{}
	}
	return types.MenuItem{Name: name, Allergens: allergens}
}

// SampleMenuData returns two plan weeks with overlapping dishes.
func SampleMenuData() *types.MenuData {
	return &types.MenuData{
		Allergens: []string{"gluten", "lacteos", "huevos", "pescado"},
		Weeks: []types.MenuWeek{
			{
				Week: 0,
				Days: []types.MenuDay{
					{Day: "LUN", Meals: []types.MenuMeal{
						{Type: "breakfast", Items: []types.MenuItem{item("Tostadas", "gluten")}},
						{Type: "lunch", Items: []types.MenuItem{item("Lentejas"), item("Pizza de Jamón y Queso", "gluten", "lacteos")}},
					}},
					{Day: "MAR", Meals: []types.MenuMeal{
						{Type: "lunch", Items: []types.MenuItem{item("Merluza Rebozada", "gluten", "huevos", "pescado")}},
						{Type: "dinner", Items: []types.MenuItem{item("Tortilla de Patatas", "huevos")}},
					}},
					{Day: "SAB_DOM", Meals: []types.MenuMeal{}},
				},
			},
			{
				Week: 1,
				Days: []types.MenuDay{
					{Day: "LUN", Meals: []types.MenuMeal{
						{Type: "lunch", Items: []types.MenuItem{item("Lentejas"), item("Tostadas", "gluten", "lacteos")}},
					}},
				},
			},
		},
	}
}
