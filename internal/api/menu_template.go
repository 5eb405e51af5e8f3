package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type MenuTemplateHandler struct {
	templates   service.IMenuTemplateService
	authService middleware.TokenValidator
}

func NewMenuTemplateHandler(templates service.IMenuTemplateService, authService middleware.TokenValidator) *MenuTemplateHandler {
	return &MenuTemplateHandler{templates: templates, authService: authService}
}

func (h *MenuTemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	templates := router.Group("/menu-templates")
	{
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
		templates.POST("/import-json", auth, h.ImportTemplate)
		templates.PUT("/:id", auth, h.RenameTemplate)
		templates.DELETE("/:id", auth, h.DeleteTemplate)
		templates.PUT("/:id/weeks/:weekNumber/days/:day/meals/:type/items", auth, h.ReplaceMealItems)
	}
	router.PUT("/menu-template-meals/:mealId/reorder", auth, h.ReorderMealItems)
	router.PUT("/menu-template-items/:itemId/dish", auth, h.ReplaceItemDish)
}

func (h *MenuTemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *MenuTemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *MenuTemplateHandler) ImportTemplate(c *gin.Context) {
	var req types.ImportTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	stats, err := h.templates.ImportJSON(c.Request.Context(), req.Name, req.MenuData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stats)
}

func (h *MenuTemplateHandler) RenameTemplate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.RenameTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tpl, err := h.templates.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *MenuTemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MenuTemplateHandler) ReplaceMealItems(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	week, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil || week < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weekNumber"})
		return
	}
	var req types.TemplateMealItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	meal, err := h.templates.ReplaceMealItems(c.Request.Context(), id, week, c.Param("day"), c.Param("type"), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MenuTemplateHandler) ReorderMealItems(c *gin.Context) {
	mealID, ok := uintParam(c, "mealId")
	if !ok {
		return
	}
	var req types.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	meal, err := h.templates.ReorderMealItems(c.Request.Context(), mealID, req.ItemIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MenuTemplateHandler) ReplaceItemDish(c *gin.Context) {
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}
	var req types.TemplateItemDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.templates.ReplaceItemDish(c.Request.Context(), itemID, req.Name, req.Allergens)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
