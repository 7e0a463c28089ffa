package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that owns resumes. IsActive gates public visibility
// of every resume the user owns.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name          string    `json:"name" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex:idx_user_email;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	IsActive      bool      `json:"isActive" gorm:"not null;index:idx_user_active"`
	EmailVerified bool      `json:"emailVerified" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index:idx_user_created"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to set UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NormalizeEmail lowercases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
