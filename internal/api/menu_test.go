package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

func menuRequest(date string) types.MenuRequest {
	return types.MenuRequest{
		Date: date,
		Meals: []types.MealInput{
			{Type: "lunch", Items: []types.MealItemInput{
				{Name: "Lentejas"},
				{Name: "Pizza Margarita", Allergens: []string{"gluten", "lacteos"}},
			}},
			{Type: "dinner", Items: []types.MealItemInput{{Name: "Tortilla de Patatas", Allergens: []string{"huevos"}}}},
		},
	}
}

func createMenu(t *testing.T, env *testEnv, date string) models.Menu {
	t.Helper()
	w := PerformRequest(env.router, http.MethodPost, "/api/v1/menus", menuRequest(date), env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var menu models.Menu
	decode(t, w, &menu)
	return menu
}

func TestMenuCRUD(t *testing.T) {
	env := setupTestEnv(t, nil)

	created := createMenu(t, env, "2025-03-10")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "2025-03-10", created.DateString())
	require.Len(t, created.Meals, 2)

	t.Run("get by date", func(t *testing.T) {
		w := PerformRequest(env.router, http.MethodGet, "/api/v1/menus/2025-03-10", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var menu models.Menu
		decode(t, w, &menu)
		assert.Equal(t, created.ID, menu.ID)
		require.Len(t, menu.Meals, 2)
		require.Len(t, menu.Meals[0].Items, 2)
		require.NotNil(t, menu.Meals[0].Items[1].Dish)
		assert.Equal(t, "Pizza Margarita", menu.Meals[0].Items[1].Dish.Name)
	})

	t.Run("missing date", func(t *testing.T) {
		w := PerformRequest(env.router, http.MethodGet, "/api/v1/menus/2025-03-11", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		w := PerformRequest(env.router, http.MethodGet, "/api/v1/menus/10-03-2025", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate date", func(t *testing.T) {
		w := PerformRequest(env.router, http.MethodPost, "/api/v1/menus", menuRequest("2025-03-10"), env.token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("update replaces meals", func(t *testing.T) {
		req := types.MenuRequest{Meals: []types.MealInput{{Type: "breakfast", Items: []types.MealItemInput{{Name: "Tostadas"}}}}}
		w := PerformRequest(env.router, http.MethodPut, "/api/v1/menus/"+itoa(created.ID), req, env.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var menu models.Menu
		decode(t, w, &menu)
		require.Len(t, menu.Meals, 1)
		assert.Equal(t, "breakfast", menu.Meals[0].Type)
	})

	t.Run("delete", func(t *testing.T) {
		w := PerformRequest(env.router, http.MethodDelete, "/api/v1/menus/"+itoa(created.ID), nil, env.token)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = PerformRequest(env.router, http.MethodDelete, "/api/v1/menus/"+itoa(created.ID), nil, env.token)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var dishes int64
		require.NoError(t, env.db.Model(&models.Dish{}).Count(&dishes).Error)
		assert.Equal(t, int64(4), dishes)
	})
}

func TestMenuWritesRequireAuth(t *testing.T) {
	env := setupTestEnv(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"create", http.MethodPost, "/api/v1/menus"},
		{"update", http.MethodPut, "/api/v1/menus/1"},
		{"delete", http.MethodDelete, "/api/v1/menus/1"},
		{"delete range", http.MethodDelete, "/api/v1/menus?startDate=2025-01-01&endDate=2025-01-31"},
		{"add meal", http.MethodPost, "/api/v1/menus/1/meals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := PerformRequest(env.router, tt.method, tt.path, menuRequest("2025-03-10"), "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := PerformRequest(env.router, http.MethodGet, "/api/v1/menus", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMenuListAndRangeDelete(t *testing.T) {
	env := setupTestEnv(t, nil)
	for _, d := range []string{"2025-03-10", "2025-03-11", "2025-03-17"} {
		createMenu(t, env, d)
	}

	w := PerformRequest(env.router, http.MethodGet, "/api/v1/menus?startDate=2025-03-10&endDate=2025-03-14", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var menus []models.Menu
	decode(t, w, &menus)
	require.Len(t, menus, 2)
	assert.Equal(t, "2025-03-10", menus[0].DateString())
	assert.Equal(t, "2025-03-11", menus[1].DateString())

	w = PerformRequest(env.router, http.MethodGet, "/api/v1/menus?startDate=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = PerformRequest(env.router, http.MethodDelete, "/api/v1/menus?startDate=2025-03-10", nil, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = PerformRequest(env.router, http.MethodDelete, "/api/v1/menus?startDate=2025-03-14&endDate=2025-03-10", nil, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = PerformRequest(env.router, http.MethodDelete, "/api/v1/menus?startDate=2025-03-01&endDate=2025-03-12", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var removed struct {
		DeletedCount int      `json:"deletedCount"`
		DeletedDates []string `json:"deletedDates"`
	}
	decode(t, w, &removed)
	assert.Equal(t, 2, removed.DeletedCount)
	assert.ElementsMatch(t, []string{"2025-03-10", "2025-03-11"}, removed.DeletedDates)

	w = PerformRequest(env.router, http.MethodGet, "/api/v1/menus", nil, "")
	decode(t, w, &menus)
	require.Len(t, menus, 1)
	assert.Equal(t, "2025-03-17", menus[0].DateString())
}

func TestMealItemEndpoints(t *testing.T) {
	env := setupTestEnv(t, nil)
	menu := createMenu(t, env, "2025-03-10")
	base := "/api/v1/menus/" + itoa(menu.ID)

	w := PerformRequest(env.router, http.MethodPost, base+"/meals", types.MealInput{Type: "breakfast"}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var meal models.Meal
	decode(t, w, &meal)
	assert.Equal(t, "breakfast", meal.Type)

	w = PerformRequest(env.router, http.MethodPost, base+"/meals", types.MealInput{Type: "merienda"}, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mealPath := base + "/meals/" + itoa(meal.ID) + "/items"
	w = PerformRequest(env.router, http.MethodPost, mealPath, types.MealItemInput{Name: "Tostadas", Allergens: []string{"gluten"}}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.MealItem
	decode(t, w, &item)
	assert.Equal(t, meal.ID, item.MealID)

	w = PerformRequest(env.router, http.MethodPut, mealPath+"/"+itoa(item.ID), types.MealItemInput{Name: "Fruta", Order: 3}, env.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &item)
	assert.Equal(t, 3, item.Order)

	w = PerformRequest(env.router, http.MethodDelete, mealPath+"/"+itoa(item.ID), nil, env.token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(env.router, http.MethodDelete, mealPath+"/"+itoa(item.ID), nil, env.token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = PerformRequest(env.router, http.MethodPost, base+"/meals/abc/items", types.MealItemInput{Name: "Fruta"}, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
