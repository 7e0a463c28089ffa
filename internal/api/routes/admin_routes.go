package routes

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type AdminRoutes struct {
	handler    *handlers.AdminHandler
	jwtSecret  string
	rateLimit  gin.HandlerFunc
	validation *middleware.ValidationMiddleware
}

func NewAdminRoutes(handler *handlers.AdminHandler, jwtSecret string, rateLimit gin.HandlerFunc, validation *middleware.ValidationMiddleware) *AdminRoutes {
	return &AdminRoutes{
		handler:    handler,
		jwtSecret:  jwtSecret,
		rateLimit:  rateLimit,
		validation: validation,
	}
}

// RegisterRoutes sets up the admin console
func (r *AdminRoutes) RegisterRoutes(router *gin.Engine) {
	v := r.validation
	admin := router.Group("/api/admin")
	admin.POST("/login", r.rateLimit, v.ValidateRequest(&dto.AdminLoginRequest{}), r.handler.Login)

	protected := admin.Group("")
	protected.Use(middleware.AdminMiddleware(r.jwtSecret))
	{
		protected.GET("/users", r.handler.Users)
		protected.GET("/resumes", r.handler.Resumes)
		protected.GET("/stats", r.handler.Stats)
		protected.PUT("/users/:id", v.ValidateRequest(&dto.AdminUpdateUserRequest{}), r.handler.UpdateUser)
		protected.PUT("/resumes/:id", v.ValidateRequest(&dto.AdminUpdateResumeRequest{}), r.handler.UpdateResume)
		protected.DELETE("/users/:id", r.handler.DeleteUser)
		protected.DELETE("/resumes/:id", r.handler.DeleteResume)
	}
}
