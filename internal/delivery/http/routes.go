package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scentpair/backend/config"
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
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1: structured source, scoring and advice
	v1 := router.Group("/api/v1")
	{
		fragrances := v1.Group("/fragrances")
		{
			fragrances.GET("/search", handler.SearchFragrances)
			fragrances.GET("/:id", handler.GetFragrance)
		}

		v1.POST("/match", handler.Match)

		advice := v1.Group("/advice")
		{
			advice.POST("/analyze", handler.Analyze)
			advice.POST("/ask", handler.Ask)
		}
	}

	// API v2: scraped source
	v2 := router.Group("/api/v2")
	{
		fragrances := v2.Group("/fragrances")
		{
			fragrances.GET("/search", handler.SearchFragrancesV2)
			fragrances.POST("/resolve", handler.ResolveFragranceV2)
		}
	}

	return router
}
