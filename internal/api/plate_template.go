package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type PlateTemplateHandler struct {
	templates   service.IPlateTemplateService
	authService middleware.TokenValidator
}

func NewPlateTemplateHandler(templates service.IPlateTemplateService, authService middleware.TokenValidator) *PlateTemplateHandler {
	return &PlateTemplateHandler{templates: templates, authService: authService}
}

func (h *PlateTemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	templates := router.Group("/plate-templates")
	{
		templates.GET("", h.ListPlateTemplates)
		templates.GET("/search", h.SearchPlateTemplates)
		templates.POST("", auth, h.UpsertPlateTemplate)
		templates.POST("/:id/use", auth, h.UsePlateTemplate)
	}
}

func (h *PlateTemplateHandler) ListPlateTemplates(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *PlateTemplateHandler) SearchPlateTemplates(c *gin.Context) {
	templates, err := h.templates.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *PlateTemplateHandler) UpsertPlateTemplate(c *gin.Context) {
	var req types.PlateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pt, err := h.templates.Upsert(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

func (h *PlateTemplateHandler) UsePlateTemplate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	pt, err := h.templates.Use(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}
