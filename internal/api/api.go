package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/events"
	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
)

// Dependencies are the collaborators shared by every handler. Publisher,
// Archiver and the limiters are optional.
type Dependencies struct {
	DB            *gorm.DB
	AuthService   *service.AuthService
	Publisher     events.Publisher
	Archiver      Archiver
	LoginLimiter  middleware.Limiter
	ImportLimiter middleware.Limiter
}

// SetupAPI builds the services and mounts every route under /api/v1.
func SetupAPI(router *gin.Engine, deps Dependencies) {
	v1 := router.Group("/api/v1")
	{
		// Initialize services
		menuService := service.NewMenuService(deps.DB)
		importService := service.NewImportService(deps.DB, deps.Publisher)
		dishService := service.NewDishService(deps.DB)
		allergenService := service.NewAllergenService(deps.DB)
		plateService := service.NewPlateTemplateService(deps.DB)
		templateService := service.NewMenuTemplateService(deps.DB)
		settingsService := service.NewSettingsService(deps.DB)

		// Register routes
		NewHealthHandler(deps.DB).RegisterRoutes(v1)
		NewAuthHandler(deps.AuthService, deps.LoginLimiter).RegisterRoutes(v1)
		NewMenuHandler(menuService, deps.AuthService).RegisterRoutes(v1)
		NewImportHandler(importService, deps.AuthService, deps.ImportLimiter, deps.Archiver).RegisterRoutes(v1)
		NewDishHandler(dishService, deps.AuthService).RegisterRoutes(v1)
		NewAllergenHandler(allergenService).RegisterRoutes(v1)
		NewPlateTemplateHandler(plateService, deps.AuthService).RegisterRoutes(v1)
		NewMenuTemplateHandler(templateService, deps.AuthService).RegisterRoutes(v1)
		NewSettingsHandler(settingsService, deps.AuthService).RegisterRoutes(v1)
	}
}
