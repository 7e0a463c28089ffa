package resume

import (
	"context"
	"errors"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrResumeNotFound = errors.New("resume not found")
	// ErrIdentifierTaken is returned when a short id or alias collides.
	ErrIdentifierTaken = errors.New("identifier already taken")
)

type Repository interface {
	// Create returns ErrIdentifierTaken on a short id or alias collision.
	Create(ctx context.Context, resume *Resume) error
	FindByID(ctx context.Context, id uuid.UUID) (*Resume, error)
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*Resume, error)
	// FindByIdentifier matches the short id or the custom alias and loads the owner.
	FindByIdentifier(ctx context.Context, identifier string) (*Resume, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Resume, error)
	ListAll(ctx context.Context) ([]Resume, error)
	// IdentifierTaken reports whether another resume uses identifier as short id or alias.
	IdentifierTaken(ctx context.Context, identifier string, exclude uuid.UUID) (bool, error)
	// Update writes the user-editable columns only; counters are untouched.
	Update(ctx context.Context, resume *Resume) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]analytics.ResumeSummary, error)
	ApplyCounters(ctx context.Context, resumeID uuid.UUID, delta analytics.CounterDelta) error
	SetAverageTimeSpent(ctx context.Context, resumeID uuid.UUID, avg float64) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, resume *Resume) error {
	err := r.db.WithContext(ctx).Omit("Owner").Create(resume).Error
	if connection.IsUniqueViolation(err) {
		return ErrIdentifierTaken
	}
	return err
}

func (r *repository) first(query *gorm.DB) (*Resume, error) {
	var resume Resume
	if err := query.First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResumeNotFound
		}
		return nil, err
	}
	return &resume, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Resume, error) {
	return r.first(r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id))
}

func (r *repository) FindOwned(ctx context.Context, userID, id uuid.UUID) (*Resume, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID))
}

func (r *repository) FindByIdentifier(ctx context.Context, identifier string) (*Resume, error) {
	return r.first(r.db.WithContext(ctx).
		Preload("Owner").
		Where("short_id = ? OR custom_url = ?", identifier, identifier))
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Resume, error) {
	var resumes []Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&resumes).Error
	return resumes, err
}

func (r *repository) ListAll(ctx context.Context) ([]Resume, error) {
	var resumes []Resume
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Find(&resumes).Error
	return resumes, err
}

func (r *repository) IdentifierTaken(ctx context.Context, identifier string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Resume{}).
		Where("(short_id = ? OR custom_url = ?) AND id <> ?", identifier, identifier, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) Update(ctx context.Context, resume *Resume) error {
	result := r.db.WithContext(ctx).Model(resume).
		Select("name", "filename", "original_name", "custom_url", "is_public").
		Omit("Owner").
		Updates(resume)
	if result.Error != nil {
		if connection.IsUniqueViolation(result.Error) {
			return ErrIdentifierTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Resume{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Resume{}).Count(&n).Error
	return n, err
}

func (r *repository) ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]analytics.ResumeSummary, error) {
	resumes, err := r.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ResumeSummary, 0, len(resumes))
	for i := range resumes {
		out = append(out, resumes[i].Summary())
	}
	return out, nil
}

// ApplyCounters increments in SQL so concurrent visits never lose counts.
func (r *repository) ApplyCounters(ctx context.Context, resumeID uuid.UUID, delta analytics.CounterDelta) error {
	result := r.db.WithContext(ctx).Model(&Resume{}).
		Where("id = ?", resumeID).
		Updates(map[string]interface{}{
			"analytics_views":           gorm.Expr("analytics_views + ?", delta.Views),
			"analytics_downloads":       gorm.Expr("analytics_downloads + ?", delta.Downloads),
			"analytics_unique_visitors": gorm.Expr("analytics_unique_visitors + ?", delta.UniqueVisitors),
			"analytics_total_sessions":  gorm.Expr("analytics_total_sessions + ?", delta.TotalSessions),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (r *repository) SetAverageTimeSpent(ctx context.Context, resumeID uuid.UUID, avg float64) error {
	return r.db.WithContext(ctx).Model(&Resume{}).
		Where("id = ?", resumeID).
		Update("analytics_average_time_spent", avg).Error
}
