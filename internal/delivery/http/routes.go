package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutrikatori/backend/config"
)

// MetricsExporter observes requests and serves the scrape endpoint
type MetricsExporter interface {
	RequestObserver
	Handler() http.Handler
}

// SetupRouter creates and configures the Gin router. metrics may be nil, in
// which case /metrics is not mounted.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, metrics MetricsExporter) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var observer RequestObserver
	if metrics != nil {
		observer = metrics
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger, observer))
	router.Use(RecoveryMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		nutrition := v1.Group("/nutrition")
		{
			nutrition.POST("/estimate", handler.EstimateDish)
			nutrition.POST("/ingredients", handler.EstimateIngredients)
			nutrition.POST("/mass", handler.EstimateMass)
		}
	}

	return router
}
