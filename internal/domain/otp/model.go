package otp

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Purpose string

const PurposeRegistration Purpose = "registration"

func (p Purpose) Valid() bool {
	return p == PurposeRegistration
}

// Code is a pending one-time passcode. Only a bcrypt hash of the digits is stored.
type Code struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"not null;index:idx_otp_email_purpose"`
	CodeHash  string    `json:"-" gorm:"not null"`
	Purpose   Purpose   `json:"purpose" gorm:"type:varchar(32);not null;index:idx_otp_email_purpose"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index:idx_otp_expires"`
	Attempts  int       `json:"attempts" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Code) TableName() string {
	return "otp_codes"
}

func (c *Code) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
