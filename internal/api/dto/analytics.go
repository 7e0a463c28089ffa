package dto

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
)

type CompareQuery struct {
	ResumeIDs string `form:"resumeIds" validate:"required,not_empty" example:"id1,id2"`
}

type OverviewResponse struct {
	Success bool `json:"success" example:"true"`
	*analytics.Overview
}

type ResumeAnalyticsResponse struct {
	Success bool `json:"success" example:"true"`
	*analytics.ResumeReport
}

type SessionResponse struct {
	Success bool               `json:"success" example:"true"`
	Session *analytics.Session `json:"session"`
}

type CompareResponse struct {
	Success     bool                   `json:"success" example:"true"`
	Comparisons []analytics.Comparison `json:"comparisons"`
}
