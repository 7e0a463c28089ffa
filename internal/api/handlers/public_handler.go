package handlers

import (
	"errors"
	"net/http"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/gin-gonic/gin"
)

const unavailableMessage = "Resume not found, user account is disabled, or resume is private"

// PublicHandler serves shared resume links to anonymous visitors.
type PublicHandler struct {
	resumes   resume.Service
	analytics analytics.Service
	jwtSecret string
}

func NewPublicHandler(resumes resume.Service, analytics analytics.Service, jwtSecret string) *PublicHandler {
	return &PublicHandler{resumes: resumes, analytics: analytics, jwtSecret: jwtSecret}
}

func (h *PublicHandler) resolve(c *gin.Context) (*resume.Resume, bool) {
	r, err := h.resumes.ResolvePublic(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		if errors.Is(err, resume.ErrResumeNotFound) {
			respondMessage(c, http.StatusNotFound, unavailableMessage)
		} else {
			respondError(c, err)
		}
		return nil, false
	}
	return r, true
}

// View resolves a share link and opens an analytics session
// @Summary View a shared resume
// @Description Resolves a short id or custom alias. Anonymous visitors get an analytics session.
// @Tags public
// @Produce json
// @Param identifier path string true "Short id or custom alias"
// @Success 200 {object} dto.PublicResumeResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/public/{identifier} [get]
func (h *PublicHandler) View(c *gin.Context) {
	r, ok := h.resolve(c)
	if !ok {
		return
	}

	viewerID, authenticated := middleware.OptionalUserID(c, h.jwtSecret)
	isOwner := authenticated && viewerID == r.UserID

	resp := dto.PublicResumeResponse{
		Success: true,
		Resume:  dto.NewPublicResume(r),
		IsOwner: isOwner,
	}

	visit, err := h.analytics.RecordVisit(c.Request.Context(), analytics.Visit{
		ResumeID:  r.ID,
		OwnerID:   r.UserID,
		IsOwner:   isOwner,
		IP:        analytics.ClientIP(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP"), c.Request.RemoteAddr),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})
	if err != nil {
		// the view still succeeds without analytics
		log.WithError(err).WithField("resume_id", r.ID).Error("failed to record visit")
	} else if visit.SessionID != "" {
		resp.SessionID = &visit.SessionID
	}

	c.JSON(http.StatusOK, resp)
}

// File streams a shared resume for in-browser display
// @Summary Shared resume file
// @Tags public
// @Produce application/pdf
// @Param identifier path string true "Short id or custom alias"
// @Success 200 {file} file
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/public/{identifier}/file [get]
func (h *PublicHandler) File(c *gin.Context) {
	h.send(c, "inline")
}

// Download sends a shared resume as an attachment
// @Summary Download a shared resume
// @Tags public
// @Produce application/pdf
// @Param identifier path string true "Short id or custom alias"
// @Success 200 {file} file
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/public/{identifier}/download [get]
func (h *PublicHandler) Download(c *gin.Context) {
	h.send(c, "attachment")
}

func (h *PublicHandler) send(c *gin.Context, disposition string) {
	r, body, size, err := h.resumes.OpenPublic(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		if errors.Is(err, resume.ErrResumeNotFound) {
			respondMessage(c, http.StatusNotFound, unavailableMessage)
			return
		}
		respondError(c, err)
		return
	}
	sendPDF(c, disposition, r.OriginalName, body, size)
}

// Track records a viewer event against an existing session
// @Summary Track a viewer event
// @Description Accepts JSON with any Content-Type so that navigator.sendBeacon works
// @Tags public
// @Accept json
// @Produce json
// @Param identifier path string true "Short id or custom alias"
// @Param request body dto.TrackRequest true "Session and event"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/track/{identifier} [post]
func (h *PublicHandler) Track(c *gin.Context) {
	req := middleware.GetValidated[dto.TrackRequest](c)

	r, err := h.resumes.ResolvePublic(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.analytics.Track(c.Request.Context(), analytics.TrackInput{
		ResumeID:  r.ID,
		OwnerID:   r.UserID,
		SessionID: req.SessionID,
		Event:     req.Event,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
