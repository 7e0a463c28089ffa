package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

var (
	trackedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resumehub_tracked_events_total",
			Help: "Analytics events accepted from viewers",
		},
		[]string{"event"},
	)
	sessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resumehub_sessions_created_total",
			Help: "New analytics sessions opened by public views",
		},
	)
)

const (
	overviewWindow    = 30 * 24 * time.Hour
	recentSessionsMax = 10
	topResumesMax     = 5
	geoStatsMax       = 10
)

// ResumeDirectory is the resume side analytics reads and bumps.
type ResumeDirectory interface {
	// ListSummaries returns the owner's resumes, newest first.
	ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]ResumeSummary, error)
	ApplyCounters(ctx context.Context, resumeID uuid.UUID, delta CounterDelta) error
	SetAverageTimeSpent(ctx context.Context, resumeID uuid.UUID, avg float64) error
}

// Notifier fans tracking activity out to dashboards. Failures are logged
// and never fail the tracking call.
type Notifier interface {
	Notify(ctx context.Context, event LiveEvent) error
}

// Visit is a public view of a resume.
type Visit struct {
	ResumeID  uuid.UUID
	OwnerID   uuid.UUID
	IsOwner   bool
	IP        string
	UserAgent string
	Referer   string
}

type VisitResult struct {
	// SessionID is empty when the owner views a resume they never visited
	// anonymously.
	SessionID string
	Created   bool
}

type TrackInput struct {
	ResumeID  uuid.UUID
	OwnerID   uuid.UUID
	SessionID string
	Event     string
}

type Service interface {
	RecordVisit(ctx context.Context, visit Visit) (*VisitResult, error)
	Track(ctx context.Context, input TrackInput) error
	Overview(ctx context.Context, ownerID uuid.UUID) (*Overview, error)
	ResumeReport(ctx context.Context, ownerID, resumeID uuid.UUID) (*ResumeReport, error)
	SessionDetail(ctx context.Context, ownerID uuid.UUID, sessionID string) (*Session, error)
	Compare(ctx context.Context, ownerID uuid.UUID, resumeIDs []uuid.UUID) ([]Comparison, error)
	DeleteForResumes(ctx context.Context, resumeIDs []uuid.UUID) error
	CountSessions(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	resumes  ResumeDirectory
	locator  GeoLocator
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, resumes ResumeDirectory, locator GeoLocator, notifier Notifier) Service {
	return &service{
		repo:     repo,
		resumes:  resumes,
		locator:  locator,
		notifier: notifier,
		now:      time.Now,
	}
}

// RecordVisit opens a session for a first-time anonymous viewer and bumps
// the resume's view counters. Owners and returning viewers change nothing.
func (s *service) RecordVisit(ctx context.Context, visit Visit) (*VisitResult, error) {
	sessionID := SessionID(visit.IP, visit.UserAgent, visit.ResumeID)

	existing, err := s.repo.Find(ctx, visit.ResumeID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if existing != nil {
		return &VisitResult{SessionID: sessionID}, nil
	}
	if visit.IsOwner {
		return &VisitResult{}, nil
	}

	now := s.now().UTC()
	session := &Session{
		ResumeID:     visit.ResumeID,
		OwnerID:      visit.OwnerID,
		SessionID:    sessionID,
		Events:       []Event{{Type: EventView, Timestamp: now}},
		Device:       ParseDevice(visit.UserAgent),
		Location:     ResolveLocation(visit.IP, s.locator),
		Referrer:     ParseReferrer(visit.Referer),
		LastActivity: now,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		// a concurrent first view got there first
		if errors.Is(err, ErrSessionExists) {
			return &VisitResult{SessionID: sessionID}, nil
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	delta := CounterDelta{Views: 1, TotalSessions: 1, UniqueVisitors: 1}
	if err := s.resumes.ApplyCounters(ctx, visit.ResumeID, delta); err != nil {
		return nil, fmt.Errorf("failed to update resume counters: %w", err)
	}
	sessionsCreated.Inc()

	s.notify(ctx, LiveEvent{
		OwnerID:   visit.OwnerID,
		ResumeID:  visit.ResumeID,
		SessionID: sessionID,
		Type:      EventView,
		NewVisit:  true,
		Location:  session.Location.City + ", " + session.Location.Country,
		Device:    string(session.Device.Type),
		Timestamp: now,
	})

	return &VisitResult{SessionID: sessionID, Created: true}, nil
}

// Track appends an event to an existing session, accrues the time since
// the previous activity and applies the event's counter effect. Concurrent
// calls on one session are last-write-wins.
func (s *service) Track(ctx context.Context, input TrackInput) error {
	eventType, err := ParseEventType(input.Event)
	if err != nil {
		return err
	}

	session, err := s.repo.Find(ctx, input.ResumeID, input.SessionID)
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}

	now := s.now().UTC()
	if elapsed := now.Sub(session.LastActivity).Seconds(); elapsed > 0 {
		session.TimeSpent += elapsed
	}
	session.LastActivity = now
	session.Events = append(session.Events, Event{Type: eventType, Timestamp: now})

	if err := s.repo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if delta := eventEffects[eventType]; !delta.IsZero() {
		if err := s.resumes.ApplyCounters(ctx, input.ResumeID, delta); err != nil {
			return fmt.Errorf("failed to update resume counters: %w", err)
		}
	}

	avg, _, err := s.repo.TimeSpentStats(ctx, input.ResumeID)
	if err != nil {
		log.WithError(err).WithField("resume_id", input.ResumeID).Warn("failed to compute average time spent")
	} else if err := s.resumes.SetAverageTimeSpent(ctx, input.ResumeID, avg); err != nil {
		log.WithError(err).WithField("resume_id", input.ResumeID).Warn("failed to store average time spent")
	}

	trackedEvents.WithLabelValues(string(eventType)).Inc()
	s.notify(ctx, LiveEvent{
		OwnerID:   input.OwnerID,
		ResumeID:  input.ResumeID,
		SessionID: input.SessionID,
		Type:      eventType,
		Timestamp: now,
	})
	return nil
}

func (s *service) notify(ctx context.Context, event LiveEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.WithError(err).WithField("resume_id", event.ResumeID).Warn("failed to publish analytics event")
	}
}

func (s *service) Overview(ctx context.Context, ownerID uuid.UUID) (*Overview, error) {
	resumes, err := s.resumes.ListSummaries(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resumes))
	names := make(map[uuid.UUID]string, len(resumes))
	overview := &Overview{
		RecentSessions: []Session{},
		TopResumes:     topByViews(resumes, topResumesMax),
		DailyStats:     []DailyStat{},
	}
	for _, r := range resumes {
		ids = append(ids, r.ID)
		names[r.ID] = r.Name
		overview.TotalViews += r.Analytics.Views
		overview.TotalDownloads += r.Analytics.Downloads
	}
	if len(ids) == 0 {
		return overview, nil
	}

	if overview.TotalSessions, err = s.repo.CountByResumes(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	since := s.now().UTC().Add(-overviewWindow)
	recent, err := s.repo.ListRecent(ctx, ids, since, recentSessionsMax)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	for i := range recent {
		recent[i].ResumeName = names[recent[i].ResumeID]
	}
	overview.RecentSessions = recent

	daily, err := s.repo.DailyStats(ctx, ids, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily stats: %w", err)
	}
	overview.DailyStats = daily

	return overview, nil
}

func topByViews(resumes []ResumeSummary, limit int) []ResumeSummary {
	top := make([]ResumeSummary, len(resumes))
	copy(top, resumes)
	// stable insertion sort keeps newest-first order among equal view counts
	for i := 1; i < len(top); i++ {
		for j := i; j > 0 && top[j].Analytics.Views > top[j-1].Analytics.Views; j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}

func (s *service) ownedResume(ctx context.Context, ownerID, resumeID uuid.UUID) (*ResumeSummary, error) {
	resumes, err := s.resumes.ListSummaries(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range resumes {
		if resumes[i].ID == resumeID {
			return &resumes[i], nil
		}
	}
	return nil, ErrResumeNotFound
}

func (s *service) ResumeReport(ctx context.Context, ownerID, resumeID uuid.UUID) (*ResumeReport, error) {
	resume, err := s.ownedResume(ctx, ownerID, resumeID)
	if err != nil {
		return nil, err
	}

	report := &ResumeReport{Resume: *resume}
	if report.Sessions, err = s.repo.ListByResume(ctx, resumeID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if report.GeoStats, err = s.repo.GeoStats(ctx, resumeID, geoStatsMax); err != nil {
		return nil, fmt.Errorf("failed to compute geo stats: %w", err)
	}
	if report.DeviceStats, err = s.repo.DeviceStats(ctx, resumeID); err != nil {
		return nil, fmt.Errorf("failed to compute device stats: %w", err)
	}
	if report.ReferrerStats, err = s.repo.ReferrerStats(ctx, resumeID); err != nil {
		return nil, fmt.Errorf("failed to compute referrer stats: %w", err)
	}
	if report.TimeStats, err = s.repo.HourlyStats(ctx, resumeID); err != nil {
		return nil, fmt.Errorf("failed to compute hourly stats: %w", err)
	}
	return report, nil
}

func (s *service) SessionDetail(ctx context.Context, ownerID uuid.UUID, sessionID string) (*Session, error) {
	session, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	if resume, err := s.ownedResume(ctx, ownerID, session.ResumeID); err == nil {
		session.ResumeName = resume.Name
	}
	return session, nil
}

// Compare requires every requested resume to belong to the caller.
func (s *service) Compare(ctx context.Context, ownerID uuid.UUID, resumeIDs []uuid.UUID) ([]Comparison, error) {
	resumes, err := s.resumes.ListSummaries(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	owned := make(map[uuid.UUID]ResumeSummary, len(resumes))
	for _, r := range resumes {
		owned[r.ID] = r
	}

	out := make([]Comparison, 0, len(resumeIDs))
	for _, id := range resumeIDs {
		r, ok := owned[id]
		if !ok {
			return nil, ErrResumeNotFound
		}
		avg, count, err := s.repo.TimeSpentStats(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to compute time spent: %w", err)
		}
		out = append(out, Comparison{
			ResumeID:     r.ID,
			Name:         r.Name,
			Analytics:    r.Analytics,
			Sessions:     count,
			AvgTimeSpent: avg,
		})
	}
	return out, nil
}

func (s *service) DeleteForResumes(ctx context.Context, resumeIDs []uuid.UUID) error {
	return s.repo.DeleteByResumes(ctx, resumeIDs)
}

func (s *service) CountSessions(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
