package http

import (
	"github.com/gin-gonic/gin"

	"github.com/clothesfinder/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Liveness probes
	router.GET("/", handler.Home)
	router.GET("/health", handler.HealthCheck)

	search := RateLimitMiddleware(cfg.RateLimit.PerIP)
	router.POST("/find_item", search, handler.FindItem)
	router.POST("/search", search, handler.FindItem)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/find_item", search, handler.FindItem)
	}

	return router
}
