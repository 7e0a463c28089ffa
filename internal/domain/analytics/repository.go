package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("analytics session not found")
	ErrSessionExists   = errors.New("analytics session already exists")
	ErrUnknownEvent    = errors.New("unknown event type")
	ErrResumeNotFound  = errors.New("resume not found")
)

// Repository stores analytics sessions. Postgres and MongoDB
// implementations exist; both compute the dashboard rollups server side.
type Repository interface {
	// Create returns ErrSessionExists when the (sessionID, resume) pair is taken.
	Create(ctx context.Context, session *Session) error
	// Find returns nil, nil when the session does not exist.
	Find(ctx context.Context, resumeID uuid.UUID, sessionID string) (*Session, error)
	FindBySessionID(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	ListByResume(ctx context.Context, resumeID uuid.UUID) ([]Session, error)
	ListRecent(ctx context.Context, resumeIDs []uuid.UUID, since time.Time, limit int) ([]Session, error)
	CountByResumes(ctx context.Context, resumeIDs []uuid.UUID) (int64, error)
	DailyStats(ctx context.Context, resumeIDs []uuid.UUID, since time.Time) ([]DailyStat, error)
	GeoStats(ctx context.Context, resumeID uuid.UUID, limit int) ([]GeoStat, error)
	DeviceStats(ctx context.Context, resumeID uuid.UUID) ([]DeviceStat, error)
	ReferrerStats(ctx context.Context, resumeID uuid.UUID) ([]ReferrerStat, error)
	HourlyStats(ctx context.Context, resumeID uuid.UUID) ([]HourStat, error)
	// TimeSpentStats returns the average time spent and the session count.
	TimeSpentStats(ctx context.Context, resumeID uuid.UUID) (float64, int64, error)
	DeleteByResumes(ctx context.Context, resumeIDs []uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
