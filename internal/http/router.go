package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/sed-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router. An empty allowedOrigins
// allows every origin.
func SetupRouter(atmosphereUC *usecase.AtmosphereUseCase, extinctionUC *usecase.ExtinctionUseCase, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(atmosphereUC, extinctionUC)

	// API v1 routes.
	v1 := router.Group("/v1")

	// Stellar atmospheres.
	atmospheres := v1.Group("/atmospheres")
	atmospheres.GET("", handler.ListAtmospheres)
	atmospheres.GET("/:family", handler.GetAtmosphere)

	// Reddening laws.
	redlaws := v1.Group("/redlaws")
	redlaws.GET("", handler.ListRedLaws)
	redlaws.GET("/:name/extinction", handler.GetExtinction)
	redlaws.GET("/:name/curve", handler.GetCurve)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
