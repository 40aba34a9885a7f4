package api

import (
	"github.com/gin-gonic/gin"

	"github.com/braindler/braindler-multimodal/internal/config"
)

func SetupRoutes(cfg *config.Config, service CaseService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handler := NewHandler(service, cfg.MaxConcurrentAnalyses)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/analyze", handler.Analyze)
		api.POST("/cases", handler.CreateCase)
		api.GET("/cases/:id/status", handler.CaseStatus)
		api.GET("/cases/:id/report", handler.CaseReport)
	}

	return router
}
