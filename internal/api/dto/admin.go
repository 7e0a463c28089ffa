package dto

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
)

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"admin@example.com"`
	Password string `json:"password" validate:"required" example:"admin-password"`
}

type AdminLoginResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token"`
}

// AdminUpdateUserRequest leaves nil fields unchanged
type AdminUpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,not_empty,max=100" example:"Jane Doe"`
	Email    *string `json:"email" validate:"omitempty,email" example:"jane@example.com"`
	IsActive *bool   `json:"isActive" example:"false"`
}

type AdminUpdateResumeRequest struct {
	Name string `json:"name" validate:"required,not_empty,max=200" example:"Backend CV"`
}

type AdminUserListResponse struct {
	Success bool           `json:"success" example:"true"`
	Users   []UserResponse `json:"users"`
}

// AdminResume carries the owner alongside the resume
type AdminResume struct {
	ResumeResponse
	Owner *UserResponse `json:"user,omitempty"`
}

func NewAdminResumeList(resumes []resume.Resume) []AdminResume {
	out := make([]AdminResume, 0, len(resumes))
	for i := range resumes {
		item := AdminResume{ResumeResponse: NewResumeResponse(&resumes[i])}
		if resumes[i].Owner != nil {
			owner := NewUserResponse(resumes[i].Owner)
			item.Owner = &owner
		}
		out = append(out, item)
	}
	return out
}

type AdminResumeListResponse struct {
	Success bool          `json:"success" example:"true"`
	Resumes []AdminResume `json:"resumes"`
}

type AdminStats struct {
	Users    int64 `json:"users"`
	Resumes  int64 `json:"resumes"`
	Sessions int64 `json:"sessions"`
}

type AdminStatsResponse struct {
	Success bool       `json:"success" example:"true"`
	Stats   AdminStats `json:"stats"`
}
