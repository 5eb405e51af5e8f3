package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type DishHandler struct {
	dishes      service.IDishService
	authService middleware.TokenValidator
}

func NewDishHandler(dishes service.IDishService, authService middleware.TokenValidator) *DishHandler {
	return &DishHandler{dishes: dishes, authService: authService}
}

func (h *DishHandler) RegisterRoutes(router *gin.RouterGroup) {
	dishes := router.Group("/dishes")
	{
		dishes.GET("", h.ListDishes)
		dishes.GET("/search", h.SearchDishes)
		dishes.GET("/:id", h.GetDish)
		dishes.PUT("/:id/allergens", middleware.AuthMiddleware(h.authService), h.ReplaceAllergens)
	}
}

func (h *DishHandler) ListDishes(c *gin.Context) {
	dishes, err := h.dishes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func (h *DishHandler) SearchDishes(c *gin.Context) {
	dishes, err := h.dishes.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func (h *DishHandler) GetDish(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	dish, err := h.dishes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *DishHandler) ReplaceAllergens(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req types.DishAllergensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dish, err := h.dishes.ReplaceAllergens(c.Request.Context(), id, req.Allergens)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}
