package dto

import (
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/google/uuid"
)

// SendOTPRequest starts email-verified registration
// @Description Request a registration code by email
type SendOTPRequest struct {
	Name  string `json:"name" validate:"required,not_empty,max=100" example:"Jane Doe"`
	Email string `json:"email" validate:"required,email" example:"jane@example.com"`
}

// VerifyOTPRequest completes registration with the emailed code
type VerifyOTPRequest struct {
	Name     string `json:"name" validate:"required,not_empty,max=100" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"secret123"`
	OTP      string `json:"otp" validate:"required,len=6,numeric" example:"123456"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,not_empty,max=100" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"secret123"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,not_empty,max=100" example:"Jane Doe"`
	Email string `json:"email" validate:"required,email" example:"jane@example.com"`
}

// DisableAccountQuery selects private mode on or off
type DisableAccountQuery struct {
	Operation string `form:"operation" validate:"omitempty,oneof=Enable Disable" example:"Disable"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID            uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name          string    `json:"name" example:"Jane Doe"`
	Email         string    `json:"email" example:"jane@example.com"`
	IsActive      bool      `json:"isActive" example:"true"`
	EmailVerified bool      `json:"emailVerified" example:"true"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

type AuthResponse struct {
	Success bool         `json:"success" example:"true"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type UserEnvelope struct {
	Success bool         `json:"success" example:"true"`
	User    UserResponse `json:"user"`
}

// MessageResponse is the generic success or error envelope
type MessageResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Resume not found"`
}
