package handlers

import (
	"net/http"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/feedback"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FeedbackHandler struct {
	feedback feedback.Service
}

func NewFeedbackHandler(svc feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{feedback: svc}
}

// Feedback reviews a resume against a target role
// @Summary AI resume feedback
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FeedbackRequest true "Resume and target role"
// @Success 200 {object} dto.FeedbackResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /api/ai/feedback [post]
func (h *FeedbackHandler) Feedback(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := middleware.GetValidated[dto.FeedbackRequest](c)

	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		respondError(c, feedback.ErrQueryRequired)
		return
	}

	result, err := h.feedback.Feedback(c.Request.Context(), userID, resumeID, req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FeedbackResponse{
		Success:      true,
		Feedback:     result.Feedback,
		FeedbackHTML: result.FeedbackHTML,
	})
}
