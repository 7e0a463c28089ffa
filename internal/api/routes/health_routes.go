package routes

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

// SetupHealthRoutes registers health check endpoints
func SetupHealthRoutes(router *gin.Engine, handler *handlers.HealthHandler) {
	router.GET("/health", handler.Health)
	router.GET("/health/ready", handler.Ready)
	router.GET("/health/cache", handler.Cache)
}
