package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/service"
	"github.com/pageza/comedor/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
	limiter     middleware.Limiter
}

func NewAuthHandler(authService service.IAuthService, limiter middleware.Limiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		login := []gin.HandlerFunc{h.Login}
		if h.limiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimit(h.limiter, middleware.ByClientIP)}, login...)
		}
		auth.POST("/login", login...)
		auth.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	_, token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.authService.TTL().Seconds()),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
