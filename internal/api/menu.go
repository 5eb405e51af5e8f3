package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/schedule"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type MenuHandler struct {
	menus       service.IMenuService
	authService middleware.TokenValidator
}

func NewMenuHandler(menus service.IMenuService, authService middleware.TokenValidator) *MenuHandler {
	return &MenuHandler{menus: menus, authService: authService}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	menus := router.Group("/menus")
	{
		menus.GET("", h.ListMenus)
		menus.GET("/:date", h.GetMenu)
		menus.POST("", auth, h.CreateMenu)
		menus.PUT("/:id", auth, h.UpdateMenu)
		menus.DELETE("/:id", auth, h.DeleteMenu)
		menus.DELETE("", auth, h.DeleteMenuRange)
		menus.POST("/:id/meals", auth, h.AddMeal)
		menus.POST("/:id/meals/:mealId/items", auth, h.AddMealItem)
		menus.PUT("/:id/meals/:mealId/items/:itemId", auth, h.UpdateMealItem)
		menus.DELETE("/:id/meals/:mealId/items/:itemId", auth, h.DeleteMealItem)
	}
}

// optionalDate parses a query parameter when present.
func optionalDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := schedule.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + ": " + err.Error()})
		return nil, false
	}
	return &d, true
}

func (h *MenuHandler) ListMenus(c *gin.Context) {
	start, ok := optionalDate(c, "startDate")
	if !ok {
		return
	}
	end, ok := optionalDate(c, "endDate")
	if !ok {
		return
	}
	menus, err := h.menus.List(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

func (h *MenuHandler) GetMenu(c *gin.Context) {
	date, err := schedule.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.menus.GetByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var req types.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.menus.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.menus.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.menus.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMenuRange removes every menu between startDate and endDate.
func (h *MenuHandler) DeleteMenuRange(c *gin.Context) {
	start, ok := optionalDate(c, "startDate")
	if !ok {
		return
	}
	end, ok := optionalDate(c, "endDate")
	if !ok {
		return
	}
	if start == nil || end == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate are required"})
		return
	}
	removed, err := h.menus.DeleteRange(c.Request.Context(), *start, *end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": len(removed), "deletedDates": removed})
}

func (h *MenuHandler) AddMeal(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.MealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	meal, err := h.menus.AddMeal(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *MenuHandler) AddMealItem(c *gin.Context) {
	menuID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	mealID, ok := uintParam(c, "mealId")
	if !ok {
		return
	}
	var req types.MealItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.menus.AddMealItem(c.Request.Context(), menuID, mealID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) UpdateMealItem(c *gin.Context) {
	menuID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	mealID, ok := uintParam(c, "mealId")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}
	var req types.MealItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.menus.UpdateMealItem(c.Request.Context(), menuID, mealID, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteMealItem(c *gin.Context) {
	menuID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	mealID, ok := uintParam(c, "mealId")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.menus.DeleteMealItem(c.Request.Context(), menuID, mealID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
