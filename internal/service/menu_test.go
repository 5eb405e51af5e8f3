package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/testhelpers"
	"github.com/pageza/comedor/backend/internal/types"
)

func sampleMenuRequest(date string) *types.MenuRequest {
	return &types.MenuRequest{
		Date: date,
		Meals: []types.MealInput{
			{Type: "lunch", Items: []types.MealItemInput{
				{Name: "Sopa de Fideos", Allergens: []string{"gluten"}},
				{Name: "Pollo Asado"},
			}},
		},
	}
}

func TestMenuCreateAndGet(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewMenuService(db)
	ctx := context.Background()

	menu, err := svc.Create(ctx, sampleMenuRequest("2025-03-03"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", menu.DateString())
	require.Len(t, menu.Meals, 1)
	require.Len(t, menu.Meals[0].Items, 2)
	assert.Equal(t, "Sopa de Fideos", menu.Meals[0].Items[0].Dish.Name)
	assert.Equal(t, []string{"gluten"}, models.AllergenNames(menu.Meals[0].Items[0].Dish.Allergens))

	got, err := svc.GetByDate(ctx, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, menu.ID, got.ID)

	_, err = svc.Create(ctx, sampleMenuRequest("2025-03-03"))
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Create(ctx, &types.MenuRequest{Date: "03/03/2025"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.GetByDate(ctx, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMenuUpdateReplacesMeals(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewMenuService(db)
	ctx := context.Background()

	menu, err := svc.Create(ctx, sampleMenuRequest("2025-03-03"))
	require.NoError(t, err)
	soupID := menu.Meals[0].Items[0].DishID

	updated, err := svc.Update(ctx, menu.ID, &types.MenuRequest{
		Date: "2025-03-04",
		Meals: []types.MealInput{
			{Type: "dinner", Items: []types.MealItemInput{{DishID: soupID}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", updated.DateString())
	require.Len(t, updated.Meals, 1)
	assert.Equal(t, models.MealTypeDinner, updated.Meals[0].Type)

	var items int64
	require.NoError(t, db.Model(&models.MealItem{}).Count(&items).Error)
	assert.Equal(t, int64(1), items)

	_, err = svc.Update(ctx, 999, sampleMenuRequest(""))
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(ctx, menu.ID, &types.MenuRequest{Meals: []types.MealInput{{Type: "lunch", Items: []types.MealItemInput{{DishID: 999}}}}})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMenuDeleteKeepsDishes(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewMenuService(db)
	ctx := context.Background()

	menu, err := svc.Create(ctx, sampleMenuRequest("2025-03-03"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, menu.ID))

	var menus, meals, items, dishes int64
	db.Model(&models.Menu{}).Count(&menus)
	db.Model(&models.Meal{}).Count(&meals)
	db.Model(&models.MealItem{}).Count(&items)
	db.Model(&models.Dish{}).Count(&dishes)
	assert.Zero(t, menus)
	assert.Zero(t, meals)
	assert.Zero(t, items)
	assert.Equal(t, int64(2), dishes)

	assert.ErrorIs(t, svc.Delete(ctx, menu.ID), service.ErrNotFound)
}

func TestMenuListAndDeleteRange(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	_, err := service.NewImportService(db, nil).Import(context.Background(), testhelpers.SampleMenuData(), importOpts())
	require.NoError(t, err)

	svc := service.NewMenuService(db)
	ctx := context.Background()
	start := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	menus, err := svc.List(ctx, &start, &end)
	require.NoError(t, err)
	require.Len(t, menus, 2)
	assert.Equal(t, "2025-01-14", menus[0].DateString())
	assert.Equal(t, "2025-01-20", menus[1].DateString())

	removed, err := svc.DeleteRange(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-14", "2025-01-20"}, removed)

	all, err := svc.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2025-01-13", all[0].DateString())

	_, err = svc.DeleteRange(ctx, end, start)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestMenuMealItems(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewMenuService(db)
	ctx := context.Background()

	menu, err := svc.Create(ctx, &types.MenuRequest{Date: "2025-03-05"})
	require.NoError(t, err)

	meal, err := svc.AddMeal(ctx, menu.ID, &types.MealInput{Type: "breakfast"})
	require.NoError(t, err)

	item, err := svc.AddMealItem(ctx, menu.ID, meal.ID, &types.MealItemInput{Name: "Yogur Natural", Allergens: []string{"lacteos"}})
	require.NoError(t, err)
	require.NotNil(t, item.Dish)
	assert.Equal(t, "Yogur Natural", item.Dish.Name)

	updated, err := svc.UpdateMealItem(ctx, menu.ID, meal.ID, item.ID, &types.MealItemInput{Name: "Fruta", Order: 3})
	require.NoError(t, err)
	assert.Equal(t, "Fruta", updated.Dish.Name)
	assert.Equal(t, 3, updated.Order)

	_, err = svc.AddMealItem(ctx, menu.ID+1, meal.ID, &types.MealItemInput{Name: "Pan"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, svc.DeleteMealItem(ctx, menu.ID, meal.ID, item.ID))
	assert.ErrorIs(t, svc.DeleteMealItem(ctx, menu.ID, meal.ID, item.ID), service.ErrNotFound)

	var dishes int64
	db.Model(&models.Dish{}).Count(&dishes)
	assert.Equal(t, int64(2), dishes)

	_, err = svc.AddMeal(ctx, menu.ID, &types.MealInput{Type: "merienda"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
