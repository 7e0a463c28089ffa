package routes

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type AIRoutes struct {
	handler        *handlers.FeedbackHandler
	authMiddleware gin.HandlerFunc
	breaker        *middleware.CircuitBreaker
	validation     *middleware.ValidationMiddleware
}

func NewAIRoutes(handler *handlers.FeedbackHandler, authMiddleware gin.HandlerFunc, breaker *middleware.CircuitBreaker, validation *middleware.ValidationMiddleware) *AIRoutes {
	return &AIRoutes{
		handler:        handler,
		authMiddleware: authMiddleware,
		breaker:        breaker,
		validation:     validation,
	}
}

// Register adds the feedback route behind a circuit breaker so a failing
// provider is not hammered.
func (r *AIRoutes) Register(router *gin.RouterGroup) {
	ai := router.Group("/ai")
	ai.Use(r.authMiddleware)
	{
		ai.POST("/feedback",
			r.validation.ValidateRequest(&dto.FeedbackRequest{}),
			r.breaker.CircuitBreakerMiddleware(),
			r.handler.Feedback,
		)
	}
}
