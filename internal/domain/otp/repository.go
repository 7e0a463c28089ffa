package otp

import (
	"context"
	"errors"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Replace deletes any pending code for the same email and purpose and
	// stores the new one.
	Replace(ctx context.Context, code *Code) error
	// FindActive returns nil, nil when no unexpired code exists.
	FindActive(ctx context.Context, email string, purpose Purpose, now time.Time) (*Code, error)
	// IncrementAttempts bumps the attempt counter in a single statement and
	// returns the new value. ErrCodeExpired means the code is already gone.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	// Delete reports whether this call removed the row.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Replace(ctx context.Context, code *Code) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND purpose = ?", code.Email, code.Purpose).Delete(&Code{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (r *repository) FindActive(ctx context.Context, email string, purpose Purpose, now time.Time) (*Code, error) {
	var code Code
	err := r.db.WithContext(ctx).
		Where("email = ? AND purpose = ? AND expires_at > ?", email, purpose, now).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *repository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var code Code
	result := r.db.WithContext(ctx).
		Model(&code).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "attempts"}}}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrCodeExpired
	}
	return code.Attempts, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&Code{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&Code{})
	return result.RowsAffected, result.Error
}
