package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	codegen "github.com/Sooraj-Rao/college-resume-project/pkg/security/otp"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

var (
	ErrCodeExpired      = errors.New("OTP expired or not found")
	ErrCodeInvalid      = errors.New("invalid OTP")
	ErrAttemptsExceeded = errors.New("too many failed attempts, request a new OTP")
	ErrInvalidPurpose   = errors.New("invalid OTP purpose")
)

// InvalidCodeError reports a wrong code together with the attempts left.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid OTP, %d attempts remaining", e.Remaining)
}

func (e *InvalidCodeError) Unwrap() error {
	return ErrCodeInvalid
}

// Sender delivers a freshly issued code to its recipient.
type Sender interface {
	SendCode(ctx context.Context, to, name, code string) error
}

type Config struct {
	TTL         time.Duration
	MaxAttempts int
}

func DefaultConfig() Config {
	return Config{TTL: 10 * time.Minute, MaxAttempts: 5}
}

type Service interface {
	Issue(ctx context.Context, email, name string, purpose Purpose) error
	Verify(ctx context.Context, email, code string, purpose Purpose) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo   Repository
	sender Sender
	cfg    Config
	now    func() time.Time
	gen    func() (string, error)
}

// NewService wires the OTP flow. A nil sender logs codes instead of mailing
// them, which is only meant for local development.
func NewService(repo Repository, sender Sender, cfg Config) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &service{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
		gen: func() (string, error) {
			return codegen.GenerateCode(codegen.DefaultCodeConfig())
		},
	}
}

func (s *service) Issue(ctx context.Context, email, name string, purpose Purpose) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	email = normalize(email)

	code, err := s.gen()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(code)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	record := &Code{
		Email:     email,
		CodeHash:  hash,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.cfg.TTL),
	}
	if err := s.repo.Replace(ctx, record); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if s.sender == nil {
		log.WithFields(logrus.Fields{"email": email, "code": code}).Warn("mail not configured, OTP not sent")
		return nil
	}
	if err := s.sender.SendCode(ctx, email, name, code); err != nil {
		_, _ = s.repo.Delete(ctx, record.ID)
		return fmt.Errorf("failed to send code: %w", err)
	}

	log.WithFields(logrus.Fields{"email": email, "purpose": purpose}).Info("OTP issued")
	return nil
}

// Verify consumes the pending code on success. An attempt is reserved in
// the store before the code is compared, so concurrent guesses cannot
// exceed the cap; hitting the cap deletes the code.
func (s *service) Verify(ctx context.Context, email, code string, purpose Purpose) error {
	email = normalize(email)
	record, err := s.repo.FindActive(ctx, email, purpose, s.now())
	if err != nil {
		return err
	}
	if record == nil {
		return ErrCodeExpired
	}

	attempts, err := s.repo.IncrementAttempts(ctx, record.ID)
	if err != nil {
		if errors.Is(err, ErrCodeExpired) {
			return err
		}
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	if attempts > s.cfg.MaxAttempts {
		return s.invalidate(ctx, email, record)
	}

	if auth.CheckPassword(record.CodeHash, code) {
		consumed, err := s.repo.Delete(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("failed to consume code: %w", err)
		}
		if !consumed {
			return ErrCodeExpired
		}
		return nil
	}

	if attempts >= s.cfg.MaxAttempts {
		return s.invalidate(ctx, email, record)
	}
	return &InvalidCodeError{Remaining: s.cfg.MaxAttempts - attempts}
}

func (s *service) invalidate(ctx context.Context, email string, record *Code) error {
	consumed, err := s.repo.Delete(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("failed to invalidate code: %w", err)
	}
	if consumed {
		log.WithField("email", email).Warn("OTP invalidated after too many attempts")
	}
	return ErrAttemptsExceeded
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
