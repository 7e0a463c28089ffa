package resume

import (
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resume is an uploaded PDF plus its sharing state and engagement counters.
// ShortID and CustomURL share one namespace of public identifiers.
type Resume struct {
	ID           uuid.UUID          `json:"id" gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID          `json:"userId" gorm:"type:uuid;not null;index:idx_resume_user"`
	Name         string             `json:"name" gorm:"not null"`
	Filename     string             `json:"filename" gorm:"not null"`
	OriginalName string             `json:"originalName"`
	ShortID      string             `json:"shortId" gorm:"type:varchar(16);not null;uniqueIndex:idx_resume_short_id"`
	CustomURL    *string            `json:"customUrl" gorm:"type:varchar(50);uniqueIndex:idx_resume_custom_url"`
	IsPublic     bool               `json:"isPublic" gorm:"not null;default:true"`
	Analytics    analytics.Counters `json:"analytics" gorm:"embedded;embeddedPrefix:analytics_"`
	CreatedAt    time.Time          `json:"createdAt" gorm:"index:idx_resume_created"`
	UpdatedAt    time.Time          `json:"updatedAt"`

	Owner *user.User `json:"owner,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Resume) TableName() string {
	return "resumes"
}

func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PublicIdentifier is the alias when one is set, otherwise the short id.
func (r *Resume) PublicIdentifier() string {
	if r.CustomURL != nil && *r.CustomURL != "" {
		return *r.CustomURL
	}
	return r.ShortID
}

// Viewable reports whether anonymous visitors may see the resume.
func (r *Resume) Viewable() bool {
	return r.IsPublic && r.Owner != nil && r.Owner.IsActive
}

func (r *Resume) Summary() analytics.ResumeSummary {
	return analytics.ResumeSummary{
		ID:        r.ID,
		Name:      r.Name,
		ShortID:   r.ShortID,
		Analytics: r.Analytics,
		CreatedAt: r.CreatedAt,
	}
}
