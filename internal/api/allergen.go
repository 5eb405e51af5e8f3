package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type AllergenHandler struct {
	allergens service.IAllergenService
}

func NewAllergenHandler(allergens service.IAllergenService) *AllergenHandler {
	return &AllergenHandler{allergens: allergens}
}

func (h *AllergenHandler) RegisterRoutes(router *gin.RouterGroup) {
	allergens := router.Group("/allergens")
	{
		allergens.GET("", h.ListAllergens)
		allergens.POST("/infer", h.InferAllergens)
	}
}

func (h *AllergenHandler) ListAllergens(c *gin.Context) {
	allergens, err := h.allergens.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allergens)
}

func (h *AllergenHandler) InferAllergens(c *gin.Context) {
	var req types.InferAllergensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": req.Name, "allergens": h.allergens.Infer(req.Name)})
}
