package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type AdminConfig struct {
	Email          string
	Password       string
	JWTSecret      string
	JWTExpiryHours int
}

// AdminHandler is the operator console. Credentials are static config.
type AdminHandler struct {
	users     user.Service
	resumes   resume.Service
	analytics analytics.Service
	cfg       AdminConfig
}

func NewAdminHandler(users user.Service, resumes resume.Service, analytics analytics.Service, cfg AdminConfig) *AdminHandler {
	return &AdminHandler{users: users, resumes: resumes, analytics: analytics, cfg: cfg}
}

// Login issues an admin token
// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} dto.AdminLoginResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /api/admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	if h.cfg.Email == "" || h.cfg.Password == "" {
		respondMessage(c, http.StatusInternalServerError, "Admin credentials not configured")
		return
	}
	req := middleware.GetValidated[dto.AdminLoginRequest](c)

	emailOK := subtle.ConstantTimeCompare([]byte(user.NormalizeEmail(req.Email)), []byte(user.NormalizeEmail(h.cfg.Email))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !emailOK || !passOK {
		log.WithField("client_ip", c.ClientIP()).Warn("admin login rejected")
		respondMessage(c, http.StatusBadRequest, "Invalid admin credentials")
		return
	}

	token, err := auth.GenerateAdminToken(h.cfg.Email, h.cfg.JWTSecret, h.cfg.JWTExpiryHours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminLoginResponse{Success: true, Token: token})
}

// Users lists every account
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdminUserListResponse
// @Router /api/admin/users [get]
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, dto.AdminUserListResponse{Success: true, Users: out})
}

// Resumes lists every resume with its owner
// @Summary List resumes
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdminResumeListResponse
// @Router /api/admin/resumes [get]
func (h *AdminHandler) Resumes(c *gin.Context) {
	resumes, err := h.resumes.AdminList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminResumeListResponse{Success: true, Resumes: dto.NewAdminResumeList(resumes)})
}

// UpdateUser edits an account; omitted fields are unchanged
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.AdminUpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserEnvelope
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := middleware.GetValidated[dto.AdminUpdateUserRequest](c)

	u, err := h.users.AdminUpdate(c.Request.Context(), id, user.AdminUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, User: dto.NewUserResponse(u)})
}

// UpdateResume renames any resume
// @Summary Update resume
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Param request body dto.AdminUpdateResumeRequest true "New name"
// @Success 200 {object} dto.ResumeEnvelope
// @Failure 404 {object} dto.MessageResponse
// @Router /api/admin/resumes/{id} [put]
func (h *AdminHandler) UpdateResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := middleware.GetValidated[dto.AdminUpdateResumeRequest](c)

	r, err := h.resumes.AdminRename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeEnvelope{Success: true, Resume: dto.NewResumeResponse(r)})
}

// DeleteUser removes an account and everything it owns
// @Summary Delete user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(logrus.Fields{"user_id": id, "admin": c.GetString("admin_email")}).Info("user deleted by admin")
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "User and associated data deleted successfully"})
}

// DeleteResume removes any resume
// @Summary Delete resume
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/admin/resumes/{id} [delete]
func (h *AdminHandler) DeleteResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.resumes.AdminDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Resume deleted successfully"})
}

// Stats returns platform totals
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdminStatsResponse
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	var stats dto.AdminStats
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		stats.Users, err = h.users.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Resumes, err = h.resumes.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Sessions, err = h.analytics.CountSessions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminStatsResponse{Success: true, Stats: stats})
}
