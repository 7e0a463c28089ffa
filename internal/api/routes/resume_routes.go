package routes

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type ResumeRoutes struct {
	resumes        *handlers.ResumeHandler
	public         *handlers.PublicHandler
	authMiddleware gin.HandlerFunc
	trackLimit     gin.HandlerFunc
	validation     *middleware.ValidationMiddleware
}

func NewResumeRoutes(
	resumes *handlers.ResumeHandler,
	public *handlers.PublicHandler,
	authMiddleware gin.HandlerFunc,
	trackLimit gin.HandlerFunc,
	validation *middleware.ValidationMiddleware,
) *ResumeRoutes {
	return &ResumeRoutes{
		resumes:        resumes,
		public:         public,
		authMiddleware: authMiddleware,
		trackLimit:     trackLimit,
		validation:     validation,
	}
}

// RegisterRoutes sets up owner management and public share-link routes
func (r *ResumeRoutes) RegisterRoutes(router *gin.Engine) {
	v := r.validation
	group := router.Group("/api/resumes")

	// Share links resolve without an account
	public := group.Group("")
	{
		public.GET("/public/:identifier", r.public.View)
		public.GET("/public/:identifier/file", r.public.File)
		public.POST("/public/:identifier/file", r.public.File)
		public.GET("/public/:identifier/download", r.public.Download)
		public.POST("/public/:identifier/download", r.public.Download)
		public.POST("/track/:identifier", r.trackLimit, v.ValidateRequest(&dto.TrackRequest{}), r.public.Track)
	}

	owner := group.Group("")
	owner.Use(r.authMiddleware)
	{
		owner.GET("", r.resumes.List)
		owner.POST("/upload", r.resumes.Upload)
		owner.POST("/generate-share-url", v.ValidateRequest(&dto.ShareURLRequest{}), r.resumes.GenerateShareURL)
		owner.PUT("/:id", v.ValidateRequest(&dto.RenameResumeRequest{}), r.resumes.Rename)
		owner.PUT("/:id/privacy", v.ValidateRequest(&dto.PrivacyRequest{}), r.resumes.SetPrivacy)
		owner.PUT("/:id/replace", r.resumes.Replace)
		owner.DELETE("/:id", r.resumes.Delete)
		owner.GET("/:id/download", r.resumes.Download)
	}
}
