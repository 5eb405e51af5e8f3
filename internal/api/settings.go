package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type SettingsHandler struct {
	settings    service.ISettingsService
	authService middleware.TokenValidator
}

func NewSettingsHandler(settings service.ISettingsService, authService middleware.TokenValidator) *SettingsHandler {
	return &SettingsHandler{settings: settings, authService: authService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	settings := router.Group("/settings")
	{
		settings.GET("", h.GetSettings)
		settings.GET("/:key", h.GetSetting)
		settings.PUT("/:key", auth, h.SetSetting)
		settings.POST("/bulk", auth, h.SetSettings)
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *SettingsHandler) GetSetting(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) SetSetting(c *gin.Context) {
	var req types.SettingValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.settings.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) SetSettings(c *gin.Context) {
	var req types.BulkSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	all, err := h.settings.SetMany(c.Request.Context(), req.Settings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}
