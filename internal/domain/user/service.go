package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Common errors
var (
	ErrEmailExists        = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

type CreateUserInput struct {
	Name          string
	Email         string
	Password      string
	EmailVerified bool
}

type UpdateProfileInput struct {
	Name  string
	Email string
}

// AdminUpdateInput carries optional fields; nil leaves the column unchanged.
type AdminUpdateInput struct {
	Name     *string
	Email    *string
	IsActive *bool
}

// ContentPurger removes everything a user owns (resumes, stored files,
// analytics) before the account row is deleted.
type ContentPurger interface {
	PurgeOwner(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context) (int64, error)
}

type service struct {
	repo   Repository
	purger ContentPurger
}

func NewService(repo Repository, purger ContentPurger) Service {
	return &service{repo: repo, purger: purger}
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		IsActive:      true,
		EmailVerified: input.EmailVerified,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": user.ID, "verified": user.EmailVerified}).Info("user registered")
	return user, nil
}

// Authenticate checks credentials only. Disabled accounts can still sign in
// so that they can re-enable themselves.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) EmailTaken(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Email) == "" {
		return nil, ErrInvalidInput
	}
	return s.AdminUpdate(ctx, id, AdminUpdateInput{Name: &name, Email: &input.Email})
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	user, err := s.AdminUpdate(ctx, id, AdminUpdateInput{IsActive: &active})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"user_id": id, "active": active}).Info("account visibility changed")
	return user, nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) AdminUpdate(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrInvalidInput
		}
		if email != user.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if other != nil && other.ID != user.ID {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			user.Name = name
		}
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if s.purger != nil {
		if err := s.purger.PurgeOwner(ctx, id); err != nil {
			return fmt.Errorf("failed to remove user content: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.WithField("user_id", id).Info("user deleted")
	return nil
}

func (s *service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
