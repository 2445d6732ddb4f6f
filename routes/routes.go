package routes

import (
	"OPDQueue/cache"
	"OPDQueue/config"
	"OPDQueue/controllers"
	"OPDQueue/handlers"
	"OPDQueue/middlewares"
	"OPDQueue/repositories"
	"OPDQueue/services"
	"OPDQueue/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server. The
// returned TokenService also feeds the background penalty sweeper.
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, db *gorm.DB) (http.Handler, *services.TokenService) {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()

	// Apply Bearer token validation to all routes
	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	// Create and apply CORS middleware configuration
	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "https://www.example.com", "https://example-dev.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	// Apply rate limiter middleware
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15,
		Burst:             30,
	}))

	// Apply logging middleware
	router.Use(middlewares.LoggingMiddleware())

	// Initialize repositories, services, and handlers
	notifier := func(email, patientName string, tokenNumber int) {
		if email == "" {
			return
		}
		if err := utils.SendCancellationEmail(email, patientName, tokenNumber); err != nil {
			log.Printf("Failed to send cancellation email for token %d: %v", tokenNumber, err)
		}
	}

	tokenRepo := repositories.NewTokenRepository(cache, config.Admission, notifier)
	reportRepo := repositories.NewReportRepository()
	directoryRepo := repositories.NewDirectoryRepository(cache)
	userRepo := repositories.NewUserRepository(db, cache)

	tokenService := services.NewTokenService(tokenRepo)
	reportService := services.NewReportService(reportRepo)
	directoryService := services.NewDirectoryService(directoryRepo)
	userService := services.NewUserService(userRepo)

	tokenHandler := handlers.NewTokenHandler(tokenService)
	reportHandler := handlers.NewReportHandler(reportService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	authHandler := handlers.NewAuthHandler(userService)

	// Register routes
	controllers.SetupQueueRoutes(router, tokenHandler, reportHandler, directoryHandler)

	authController := controllers.NewAuthController(authHandler)
	authController.RegisterRoutes(router)

	controllers.SetupRootRoute(router)

	return router, tokenService
}
