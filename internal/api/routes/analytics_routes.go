package routes

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type AnalyticsRoutes struct {
	handler         *handlers.AnalyticsHandler
	authMiddleware  gin.HandlerFunc
	cacheMiddleware gin.HandlerFunc
	validation      *middleware.ValidationMiddleware
}

func NewAnalyticsRoutes(
	handler *handlers.AnalyticsHandler,
	authMiddleware gin.HandlerFunc,
	cacheMiddleware gin.HandlerFunc,
	validation *middleware.ValidationMiddleware,
) *AnalyticsRoutes {
	return &AnalyticsRoutes{
		handler:         handler,
		authMiddleware:  authMiddleware,
		cacheMiddleware: cacheMiddleware,
		validation:      validation,
	}
}

// Register adds the dashboard routes. Dashboards are cached per user;
// the live websocket authenticates itself.
func (r *AnalyticsRoutes) Register(router *gin.RouterGroup) {
	analytics := router.Group("/analytics")
	analytics.GET("/live", r.handler.Live)

	dashboards := analytics.Group("")
	dashboards.Use(r.authMiddleware)
	{
		dashboards.GET("/overview", r.cacheMiddleware, r.handler.Overview)
		dashboards.GET("/resume/:id", r.cacheMiddleware, r.handler.Resume)
		dashboards.GET("/session/:sessionId", r.cacheMiddleware, r.handler.Session)
		dashboards.GET("/compare", r.validation.ValidateQuery(&dto.CompareQuery{}), r.cacheMiddleware, r.handler.Compare)
	}
}
