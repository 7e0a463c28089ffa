package handlers

import (
	"net/http"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/otp"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthConfig struct {
	JWTSecret                string
	JWTExpiryHours           int
	RequireEmailVerification bool
}

type AuthHandler struct {
	users user.Service
	codes otp.Service
	cfg   AuthConfig
}

func NewAuthHandler(users user.Service, codes otp.Service, cfg AuthConfig) *AuthHandler {
	return &AuthHandler{users: users, codes: codes, cfg: cfg}
}

func (h *AuthHandler) issue(c *gin.Context, status int, u *user.User) {
	token, err := auth.GenerateToken(u.ID, u.Email, h.cfg.JWTSecret, h.cfg.JWTExpiryHours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, dto.AuthResponse{Success: true, Token: token, User: dto.NewUserResponse(u)})
}

// SendOTP emails a registration code
// @Summary Request a registration code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SendOTPRequest true "Name and email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /api/auth/send-otp [post]
func (h *AuthHandler) SendOTP(c *gin.Context) {
	req := middleware.GetValidated[dto.SendOTPRequest](c)

	taken, err := h.users.EmailTaken(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if taken {
		respondMessage(c, http.StatusBadRequest, "User already exists")
		return
	}

	if err := h.codes.Issue(c.Request.Context(), req.Email, req.Name, otp.PurposeRegistration); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "OTP sent to your email"})
}

// VerifyOTP checks the emailed code and creates the account
// @Summary Verify a registration code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Registration details and code"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /api/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	req := middleware.GetValidated[dto.VerifyOTPRequest](c)
	ctx := c.Request.Context()

	taken, err := h.users.EmailTaken(ctx, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if taken {
		respondMessage(c, http.StatusBadRequest, "User already exists")
		return
	}

	if err := h.codes.Verify(ctx, req.Email, req.OTP, otp.PurposeRegistration); err != nil {
		respondError(c, err)
		return
	}

	u, err := h.users.CreateUser(ctx, user.CreateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		EmailVerified: true,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusCreated, u)
}

// Register creates an account without email verification
// @Summary Register directly
// @Description Only available when email verification is switched off
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 403 {object} dto.MessageResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	if h.cfg.RequireEmailVerification {
		respondMessage(c, http.StatusForbidden, "Email verification is required, use send-otp")
		return
	}
	req := middleware.GetValidated[dto.RegisterRequest](c)

	u, err := h.users.CreateUser(c.Request.Context(), user.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusCreated, u)
}

// Login authenticates a user
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := middleware.GetValidated[dto.LoginRequest](c)

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	log.WithField("user_id", u.ID).Info("user logged in")
	h.issue(c, http.StatusOK, u)
}

// Verify returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} dto.MessageResponse
// @Router /api/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	u, ok := middleware.GetUser(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Access token required")
		return
	}
	c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, User: dto.NewUserResponse(u)})
}

// UpdateProfile changes name and email
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "New profile"
// @Success 200 {object} dto.UserEnvelope
// @Failure 400 {object} dto.MessageResponse
// @Router /api/auth/update-profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := middleware.GetValidated[dto.UpdateProfileRequest](c)

	u, err := h.users.UpdateProfile(c.Request.Context(), userID, user.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, User: dto.NewUserResponse(u)})
}

// SetAccountStatus toggles private mode
// @Summary Disable or enable the account
// @Description Disabled accounts hide every public resume link
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param operation query string false "Enable or Disable" Enums(Enable, Disable)
// @Success 200 {object} dto.MessageResponse
// @Router /api/auth/disable-account [put]
func (h *AuthHandler) SetAccountStatus(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	query := middleware.GetValidatedQuery[dto.DisableAccountQuery](c)

	enable := query.Operation == "Enable"
	if _, err := h.users.SetActive(c.Request.Context(), userID, enable); err != nil {
		respondError(c, err)
		return
	}

	message := "Account disabled successfully"
	if enable {
		message = "Account enabled successfully"
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: message})
}

// DeleteAccount removes the user with all resumes, files and analytics
// @Summary Delete account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Router /api/auth/delete-account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(logrus.Fields{"user_id": userID}).Info("account deleted by owner")
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Account deleted successfully"})
}
