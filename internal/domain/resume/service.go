package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/storage"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

var (
	ErrNameRequired     = errors.New("resume name is required")
	ErrFileRequired     = errors.New("no file uploaded")
	ErrInvalidFileType  = errors.New("only PDF files are allowed")
	ErrFileTooLarge     = errors.New("file exceeds the size limit")
	ErrFileMissing      = errors.New("resume file not found")
	ErrCustomURLTaken   = errors.New("Custom URL already taken")
	ErrInvalidCustomURL = errors.New("custom URL must be 3-50 letters, digits, '-' or '_'")
)

var uploads = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "resumehub_uploads_total",
		Help: "Resume uploads and replacements by result",
	},
	[]string{"result"},
)

const (
	pdfContentType   = "application/pdf"
	shortIDLength    = 7
	shortIDAttempts  = 3
	defaultMaxBytes  = 250 * 1024
	publicPathPrefix = "/r/"
)

var (
	pdfMagic     = []byte("%PDF-")
	customURLExp = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)
)

// FileInput is an uploaded file as received from the transport layer.
type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type ShareInput struct {
	ResumeID  uuid.UUID
	CustomURL string
	Referrer  string
}

type ShareLink struct {
	ShareURL  string `json:"shareUrl"`
	CustomURL string `json:"customUrl"`
	Referrer  string `json:"referrer,omitempty"`
}

// SessionPurger drops the analytics recorded for resumes being deleted.
type SessionPurger interface {
	DeleteForResumes(ctx context.Context, resumeIDs []uuid.UUID) error
}

// DashboardInvalidator drops the cached dashboard of a user whose resumes
// changed.
type DashboardInvalidator interface {
	InvalidateDashboardCache(ctx context.Context, userID uuid.UUID) error
}

type Config struct {
	MaxFileBytes  int64
	PublicBaseURL string
}

type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, name string, file FileInput) (*Resume, error)
	List(ctx context.Context, userID uuid.UUID) ([]Resume, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Resume, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) (*Resume, error)
	Replace(ctx context.Context, userID, id uuid.UUID, file FileInput) (*Resume, error)
	SetPrivacy(ctx context.Context, userID, id uuid.UUID, isPublic bool) (*Resume, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	OpenOwned(ctx context.Context, userID, id uuid.UUID) (*Resume, io.ReadCloser, int64, error)
	GenerateShareURL(ctx context.Context, userID uuid.UUID, input ShareInput) (*ShareLink, error)

	// ResolvePublic returns ErrResumeNotFound unless the resume is public
	// and its owner's account is active.
	ResolvePublic(ctx context.Context, identifier string) (*Resume, error)
	OpenPublic(ctx context.Context, identifier string) (*Resume, io.ReadCloser, int64, error)

	PurgeOwner(ctx context.Context, userID uuid.UUID) error
	AdminList(ctx context.Context) ([]Resume, error)
	AdminRename(ctx context.Context, id uuid.UUID, name string) (*Resume, error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	store    storage.Store
	sessions   SessionPurger
	dashboards DashboardInvalidator
	cfg        Config
	newID      func() (string, error)
}

// NewService builds the resume service. sessions and dashboards may be nil.
func NewService(repo Repository, store storage.Store, sessions SessionPurger, dashboards DashboardInvalidator, cfg Config) Service {
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = defaultMaxBytes
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &service{
		repo:       repo,
		store:      store,
		sessions:   sessions,
		dashboards: dashboards,
		cfg:        cfg,
		newID: func() (string, error) {
			return gonanoid.New(shortIDLength)
		},
	}
}

// validatePDF checks the declared type, the size and the leading magic
// bytes, and returns a reader positioned at the start of the file.
func (s *service) validatePDF(file FileInput) (io.Reader, error) {
	if file.Content == nil {
		return nil, ErrFileRequired
	}
	if file.ContentType != pdfContentType {
		return nil, ErrInvalidFileType
	}
	if file.Size > s.cfg.MaxFileBytes {
		return nil, ErrFileTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(file.Content, s.cfg.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(body)) > s.cfg.MaxFileBytes {
		return nil, ErrFileTooLarge
	}
	if !bytes.HasPrefix(body, pdfMagic) {
		return nil, ErrInvalidFileType
	}
	return bytes.NewReader(body), nil
}

func storedName() string {
	return uuid.NewString() + ".pdf"
}

func (s *service) Upload(ctx context.Context, userID uuid.UUID, name string, file FileInput) (*Resume, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	body, err := s.validatePDF(file)
	if err != nil {
		uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	filename := storedName()
	if err := s.store.Save(ctx, filename, body); err != nil {
		uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	resume := &Resume{
		UserID:       userID,
		Name:         name,
		Filename:     filename,
		OriginalName: file.Filename,
		IsPublic:     true,
	}
	for attempt := 0; attempt < shortIDAttempts; attempt++ {
		if resume.ShortID, err = s.newID(); err != nil {
			break
		}
		if err = s.repo.Create(ctx, resume); !errors.Is(err, ErrIdentifierTaken) {
			break
		}
	}
	if err != nil {
		s.removeFile(ctx, filename)
		uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}

	uploads.WithLabelValues("ok").Inc()
	s.invalidate(ctx, userID)
	log.WithFields(logrus.Fields{"resume_id": resume.ID, "user_id": userID}).Info("resume uploaded")
	return resume, nil
}

func (s *service) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if s.dashboards == nil {
		return
	}
	for _, id := range userIDs {
		if err := s.dashboards.InvalidateDashboardCache(ctx, id); err != nil {
			log.WithError(err).WithField("user_id", id).Warn("failed to invalidate dashboard cache")
		}
	}
}

func (s *service) removeFile(ctx context.Context, filename string) {
	if err := s.store.Delete(ctx, filename); err != nil {
		log.WithError(err).WithField("filename", filename).Warn("failed to remove stored file")
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Resume, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*Resume, error) {
	return s.repo.FindOwned(ctx, userID, id)
}

func (s *service) rename(ctx context.Context, resume *Resume, name string) (*Resume, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	resume.Name = name
	if err := s.repo.Update(ctx, resume); err != nil {
		return nil, err
	}
	s.invalidate(ctx, resume.UserID)
	return resume, nil
}

func (s *service) Rename(ctx context.Context, userID, id uuid.UUID, name string) (*Resume, error) {
	resume, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.rename(ctx, resume, name)
}

// Replace swaps the stored PDF. The new file is written before the row
// changes and the old one is removed afterwards.
func (s *service) Replace(ctx context.Context, userID, id uuid.UUID, file FileInput) (*Resume, error) {
	resume, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	body, err := s.validatePDF(file)
	if err != nil {
		uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	filename := storedName()
	if err := s.store.Save(ctx, filename, body); err != nil {
		uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	previous := resume.Filename
	resume.Filename = filename
	resume.OriginalName = file.Filename
	if err := s.repo.Update(ctx, resume); err != nil {
		s.removeFile(ctx, filename)
		uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to update resume: %w", err)
	}
	s.removeFile(ctx, previous)

	uploads.WithLabelValues("ok").Inc()
	s.invalidate(ctx, resume.UserID)
	return resume, nil
}

func (s *service) SetPrivacy(ctx context.Context, userID, id uuid.UUID, isPublic bool) (*Resume, error) {
	resume, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resume.IsPublic = isPublic
	if err := s.repo.Update(ctx, resume); err != nil {
		return nil, err
	}
	s.invalidate(ctx, resume.UserID)
	return resume, nil
}

// remove deletes the file, the analytics and the row, in that order, then
// drops the owners' cached dashboards.
func (s *service) remove(ctx context.Context, resumes ...Resume) error {
	if len(resumes) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(resumes))
	for _, r := range resumes {
		if err := s.store.Delete(ctx, r.Filename); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		ids = append(ids, r.ID)
	}
	if s.sessions != nil {
		if err := s.sessions.DeleteForResumes(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete analytics: %w", err)
		}
	}
	owners := make([]uuid.UUID, 0, 1)
	seen := make(map[uuid.UUID]bool)
	for _, r := range resumes {
		if err := s.repo.Delete(ctx, r.ID); err != nil {
			return err
		}
		if !seen[r.UserID] {
			seen[r.UserID] = true
			owners = append(owners, r.UserID)
		}
	}
	s.invalidate(ctx, owners...)
	return nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	resume, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, *resume); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"resume_id": id, "user_id": userID}).Info("resume deleted")
	return nil
}

func (s *service) open(ctx context.Context, resume *Resume) (*Resume, io.ReadCloser, int64, error) {
	rc, size, err := s.store.Open(ctx, resume.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, 0, ErrFileMissing
		}
		return nil, nil, 0, err
	}
	return resume, rc, size, nil
}

func (s *service) OpenOwned(ctx context.Context, userID, id uuid.UUID) (*Resume, io.ReadCloser, int64, error) {
	resume, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, nil, 0, err
	}
	return s.open(ctx, resume)
}

func (s *service) GenerateShareURL(ctx context.Context, userID uuid.UUID, input ShareInput) (*ShareLink, error) {
	resume, err := s.repo.FindOwned(ctx, userID, input.ResumeID)
	if err != nil {
		return nil, err
	}

	alias := strings.TrimSpace(input.CustomURL)
	switch {
	case alias == "":
		resume.CustomURL = nil
	case !customURLExp.MatchString(alias):
		return nil, ErrInvalidCustomURL
	default:
		taken, err := s.repo.IdentifierTaken(ctx, alias, resume.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCustomURLTaken
		}
		resume.CustomURL = &alias
	}

	if err := s.repo.Update(ctx, resume); err != nil {
		if errors.Is(err, ErrIdentifierTaken) {
			return nil, ErrCustomURLTaken
		}
		return nil, err
	}
	s.invalidate(ctx, resume.UserID)

	identifier := resume.PublicIdentifier()
	link := &ShareLink{
		ShareURL:  s.cfg.PublicBaseURL + publicPathPrefix + identifier,
		CustomURL: identifier,
		Referrer:  strings.TrimSpace(input.Referrer),
	}
	if link.Referrer != "" {
		link.ShareURL += "?ref=" + url.QueryEscape(link.Referrer)
	}
	return link, nil
}

func (s *service) ResolvePublic(ctx context.Context, identifier string) (*Resume, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrResumeNotFound
	}
	resume, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !resume.Viewable() {
		return nil, ErrResumeNotFound
	}
	return resume, nil
}

func (s *service) OpenPublic(ctx context.Context, identifier string) (*Resume, io.ReadCloser, int64, error) {
	resume, err := s.ResolvePublic(ctx, identifier)
	if err != nil {
		return nil, nil, 0, err
	}
	return s.open(ctx, resume)
}

// PurgeOwner implements user.ContentPurger.
func (s *service) PurgeOwner(ctx context.Context, userID uuid.UUID) error {
	resumes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.remove(ctx, resumes...)
}

func (s *service) AdminList(ctx context.Context) ([]Resume, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) AdminRename(ctx context.Context, id uuid.UUID, name string) (*Resume, error) {
	resume, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.rename(ctx, resume, name)
}

func (s *service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	resume, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, *resume)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
