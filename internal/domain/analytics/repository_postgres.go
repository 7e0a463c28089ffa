package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type postgresRepository struct {
	db *connection.Database
}

func NewPostgresRepository(db *connection.Database) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, session *Session) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if connection.IsUniqueViolation(err) {
		return ErrSessionExists
	}
	return err
}

func (r *postgresRepository) Find(ctx context.Context, resumeID uuid.UUID, sessionID string) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).
		Where("resume_id = ? AND session_id = ?", resumeID, sessionID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *postgresRepository) FindBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *postgresRepository) Update(ctx context.Context, session *Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *postgresRepository) ListByResume(ctx context.Context, resumeID uuid.UUID) ([]Session, error) {
	var sessions []Session
	err := r.db.WithContext(ctx).
		Where("resume_id = ?", resumeID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *postgresRepository) ListRecent(ctx context.Context, resumeIDs []uuid.UUID, since time.Time, limit int) ([]Session, error) {
	var sessions []Session
	if len(resumeIDs) == 0 {
		return sessions, nil
	}
	err := r.db.WithContext(ctx).
		Where("resume_id IN ? AND created_at >= ?", resumeIDs, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *postgresRepository) CountByResumes(ctx context.Context, resumeIDs []uuid.UUID) (int64, error) {
	var n int64
	if len(resumeIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&Session{}).Where("resume_id IN ?", resumeIDs).Count(&n).Error
	return n, err
}

func (r *postgresRepository) DailyStats(ctx context.Context, resumeIDs []uuid.UUID, since time.Time) ([]DailyStat, error) {
	var stats []DailyStat
	if len(resumeIDs) == 0 {
		return stats, nil
	}
	err := r.db.WithContext(ctx).Model(&Session{}).
		Select("to_char(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS sessions, COUNT(DISTINCT session_id) AS unique_visitors").
		Where("resume_id IN ? AND created_at >= ?", resumeIDs, since).
		Group("date").
		Order("date ASC").
		Scan(&stats).Error
	return stats, err
}

func (r *postgresRepository) GeoStats(ctx context.Context, resumeID uuid.UUID, limit int) ([]GeoStat, error) {
	var stats []GeoStat
	err := r.db.WithContext(ctx).Model(&Session{}).
		Select("location_country AS country, location_city AS city, COUNT(*) AS count, AVG(time_spent) AS avg_time_spent").
		Where("resume_id = ?", resumeID).
		Group("location_country, location_city").
		Order("count DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

func (r *postgresRepository) DeviceStats(ctx context.Context, resumeID uuid.UUID) ([]DeviceStat, error) {
	var stats []DeviceStat
	err := r.db.WithContext(ctx).Model(&Session{}).
		Select("device_type AS type, COUNT(*) AS count, AVG(time_spent) AS avg_time_spent").
		Where("resume_id = ?", resumeID).
		Group("device_type").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

func (r *postgresRepository) ReferrerStats(ctx context.Context, resumeID uuid.UUID) ([]ReferrerStat, error) {
	var stats []ReferrerStat
	err := r.db.WithContext(ctx).Model(&Session{}).
		Select("referrer_source AS source, referrer_campaign AS campaign, COUNT(*) AS count, AVG(time_spent) AS avg_time_spent").
		Where("resume_id = ?", resumeID).
		Group("referrer_source, referrer_campaign").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

func (r *postgresRepository) HourlyStats(ctx context.Context, resumeID uuid.UUID) ([]HourStat, error) {
	var stats []HourStat
	err := r.db.WithContext(ctx).Model(&Session{}).
		Select("CAST(EXTRACT(HOUR FROM created_at) AS INTEGER) AS hour, COUNT(*) AS count").
		Where("resume_id = ?", resumeID).
		Group("hour").
		Order("hour ASC").
		Scan(&stats).Error
	return stats, err
}

func (r *postgresRepository) TimeSpentStats(ctx context.Context, resumeID uuid.UUID) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&Session{}).
		Select("COALESCE(AVG(time_spent), 0) AS avg, COUNT(*) AS count").
		Where("resume_id = ?", resumeID).
		Scan(&row).Error
	return row.Avg, row.Count, err
}

func (r *postgresRepository) DeleteByResumes(ctx context.Context, resumeIDs []uuid.UUID) error {
	if len(resumeIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("resume_id IN ?", resumeIDs).Delete(&Session{}).Error
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Session{}).Count(&n).Error
	return n, err
}
