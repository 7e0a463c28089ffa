package routes

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type AuthRoutes struct {
	handler        *handlers.AuthHandler
	authMiddleware gin.HandlerFunc
	rateLimit      gin.HandlerFunc
	validation     *middleware.ValidationMiddleware
}

func NewAuthRoutes(handler *handlers.AuthHandler, authMiddleware, rateLimit gin.HandlerFunc, validation *middleware.ValidationMiddleware) *AuthRoutes {
	return &AuthRoutes{
		handler:        handler,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		validation:     validation,
	}
}

// RegisterRoutes sets up registration, login and account routes
func (r *AuthRoutes) RegisterRoutes(router *gin.Engine) {
	v := r.validation
	authGroup := router.Group("/api/auth")
	{
		// Credential endpoints are rate limited per client
		public := authGroup.Group("")
		public.Use(r.rateLimit)
		{
			public.POST("/send-otp", v.ValidateRequest(&dto.SendOTPRequest{}), r.handler.SendOTP)
			public.POST("/verify-otp", v.ValidateRequest(&dto.VerifyOTPRequest{}), r.handler.VerifyOTP)
			public.POST("/register", v.ValidateRequest(&dto.RegisterRequest{}), r.handler.Register)
			public.POST("/login", v.ValidateRequest(&dto.LoginRequest{}), r.handler.Login)
		}

		protected := authGroup.Group("")
		protected.Use(r.authMiddleware)
		{
			protected.GET("/verify", r.handler.Verify)
			protected.PUT("/update-profile", v.ValidateRequest(&dto.UpdateProfileRequest{}), r.handler.UpdateProfile)
			protected.PUT("/disable-account", v.ValidateQuery(&dto.DisableAccountQuery{}), r.handler.SetAccountStatus)
			protected.DELETE("/delete-account", r.handler.DeleteAccount)
		}
	}
}
