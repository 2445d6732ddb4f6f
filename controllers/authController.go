package controllers

import (
	"OPDQueue/handlers"
	"OPDQueue/middlewares"
	"OPDQueue/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes initializes all account routes directly on the router
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	// Public routes: no access token required
	router.POST("/auth/register", ac.Handler.Register)
	router.POST("/auth/login", ac.Handler.Login)
	router.POST("/auth/refresh-token", ac.Handler.RefreshToken)

	// Staff routes: account lookups for the front desk
	staffGroup := router.Group("/users").Use(
		middlewares.TokenAuthMiddleware(),
		middlewares.RoleAuthMiddleware(models.RoleStaff),
	)
	{
		staffGroup.GET("", ac.Handler.GetUsers)
		staffGroup.GET("/:id", ac.Handler.GetUserByID)
	}
}
