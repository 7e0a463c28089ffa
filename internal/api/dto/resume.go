package dto

import (
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/google/uuid"
)

type RenameResumeRequest struct {
	Name string `json:"name" validate:"required,not_empty,max=200" example:"Backend CV"`
}

type PrivacyRequest struct {
	IsPublic *bool `json:"isPublic" validate:"required" example:"false"`
}

type ShareURLRequest struct {
	ResumeID  string `json:"resumeId" validate:"required,valid_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	CustomURL string `json:"customUrl" validate:"alias" example:"jane-doe"`
	Referrer  string `json:"referrer" validate:"max=200" example:"linkedin"`
}

type TrackRequest struct {
	SessionID string `json:"sessionId" validate:"required,not_empty" example:"a1b2c3d4e5f6"`
	Event     string `json:"event" validate:"required,not_empty" example:"download"`
}

// ResumeResponse is a resume as its owner sees it
type ResumeResponse struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name" example:"Backend CV"`
	OriginalName string             `json:"originalName" example:"resume.pdf"`
	ShortID      string             `json:"shortId" example:"V1StGXR"`
	CustomURL    *string            `json:"customUrl,omitempty" example:"jane-doe"`
	IsPublic     bool               `json:"isPublic" example:"true"`
	Analytics    analytics.Counters `json:"analytics"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func NewResumeResponse(r *resume.Resume) ResumeResponse {
	return ResumeResponse{
		ID:           r.ID,
		Name:         r.Name,
		OriginalName: r.OriginalName,
		ShortID:      r.ShortID,
		CustomURL:    r.CustomURL,
		IsPublic:     r.IsPublic,
		Analytics:    r.Analytics,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func NewResumeList(resumes []resume.Resume) []ResumeResponse {
	out := make([]ResumeResponse, 0, len(resumes))
	for i := range resumes {
		out = append(out, NewResumeResponse(&resumes[i]))
	}
	return out
}

type ResumeEnvelope struct {
	Success bool           `json:"success" example:"true"`
	Resume  ResumeResponse `json:"resume"`
}

type ResumeListResponse struct {
	Success bool             `json:"success" example:"true"`
	Resumes []ResumeResponse `json:"resumes"`
}

type ShareURLResponse struct {
	Success bool `json:"success" example:"true"`
	resume.ShareLink
}

// OwnerSummary is the slice of the owner a visitor may see
type OwnerSummary struct {
	Name string `json:"name" example:"Jane Doe"`
}

type PublicResume struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name" example:"Backend CV"`
	ShortID   string       `json:"shortId" example:"V1StGXR"`
	CustomURL *string      `json:"customUrl,omitempty"`
	Owner     OwnerSummary `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
}

type PublicResumeResponse struct {
	Success   bool         `json:"success" example:"true"`
	Resume    PublicResume `json:"resume"`
	SessionID *string      `json:"sessionId"`
	IsOwner   bool         `json:"isOwner"`
}

func NewPublicResume(r *resume.Resume) PublicResume {
	p := PublicResume{
		ID:        r.ID,
		Name:      r.Name,
		ShortID:   r.ShortID,
		CustomURL: r.CustomURL,
		CreatedAt: r.CreatedAt,
	}
	if r.Owner != nil {
		p.Owner.Name = r.Owner.Name
	}
	return p
}

type FeedbackRequest struct {
	ResumeID string `json:"resumeId" validate:"required,valid_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Query    string `json:"query" validate:"required,not_empty,max=200" example:"Backend Engineer"`
}

type FeedbackResponse struct {
	Success      bool   `json:"success" example:"true"`
	Feedback     string `json:"feedback"`
	FeedbackHTML string `json:"feedbackHtml"`
}
