package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventType is the closed set of events a viewer's browser may report.
type EventType string

const (
	EventView     EventType = "view"
	EventDownload EventType = "download"
	EventTime     EventType = "time"
	EventExit     EventType = "exit"
)

// eventEffects maps every accepted event to its effect on resume counters.
var eventEffects = map[EventType]CounterDelta{
	EventView:     {},
	EventDownload: {Downloads: 1},
	EventTime:     {},
	EventExit:     {},
}

// ParseEventType rejects anything outside the closed set.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if _, ok := eventEffects[t]; !ok {
		return "", ErrUnknownEvent
	}
	return t, nil
}

type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

type DeviceInfo struct {
	Type      DeviceType `json:"type" gorm:"type:varchar(16)"`
	Browser   string     `json:"browser"`
	OS        string     `json:"os"`
	UserAgent string     `json:"userAgent"`
}

type Location struct {
	IP       string   `json:"ip"`
	Country  string   `json:"country"`
	Region   string   `json:"region"`
	City     string   `json:"city"`
	Timezone string   `json:"timezone"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

type Referrer struct {
	Source   string `json:"source"`
	Campaign string `json:"campaign"`
}

// Session is one visitor's engagement with one resume. At most one exists
// per (SessionID, ResumeID).
type Session struct {
	ID           uuid.UUID                  `json:"id" gorm:"type:uuid;primary_key"`
	ResumeID     uuid.UUID                  `json:"resumeId" gorm:"type:uuid;not null;uniqueIndex:idx_session_resume,priority:2"`
	OwnerID      uuid.UUID                  `json:"-" gorm:"type:uuid;not null;index:idx_session_owner"`
	SessionID    string                     `json:"sessionId" gorm:"type:varchar(12);not null;uniqueIndex:idx_session_resume,priority:1"`
	Events       datatypes.JSONSlice[Event] `json:"events"`
	Device       DeviceInfo                 `json:"deviceInfo" gorm:"embedded;embeddedPrefix:device_"`
	Location     Location                   `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Referrer     Referrer                   `json:"referrer" gorm:"embedded;embeddedPrefix:referrer_"`
	TimeSpent    float64                    `json:"timeSpent" gorm:"not null"`
	LastActivity time.Time                  `json:"lastActivity" gorm:"not null"`
	CreatedAt    time.Time                  `json:"createdAt" gorm:"index:idx_session_created"`
	UpdatedAt    time.Time                  `json:"updatedAt"`

	ResumeName string `json:"resumeName,omitempty" gorm:"-"`
}

func (Session) TableName() string {
	return "analytics_sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Counters is the engagement summary stored on each resume.
type Counters struct {
	Views            int64   `json:"views" gorm:"not null;default:0"`
	Downloads        int64   `json:"downloads" gorm:"not null;default:0"`
	UniqueVisitors   int64   `json:"uniqueVisitors" gorm:"not null;default:0"`
	TotalSessions    int64   `json:"totalSessions" gorm:"not null;default:0"`
	AverageTimeSpent float64 `json:"averageTimeSpent" gorm:"not null;default:0"`
}

// CounterDelta is an increment applied atomically to a resume's counters.
type CounterDelta struct {
	Views          int64
	Downloads      int64
	UniqueVisitors int64
	TotalSessions  int64
}

func (d CounterDelta) IsZero() bool {
	return d == CounterDelta{}
}

// ResumeSummary is the slice of a resume the dashboards need.
type ResumeSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortID   string    `json:"shortId"`
	Analytics Counters  `json:"analytics"`
	CreatedAt time.Time `json:"createdAt"`
}

type DailyStat struct {
	Date           string `json:"date"`
	Sessions       int64  `json:"sessions"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
}

type GeoStat struct {
	Country      string  `json:"country"`
	City         string  `json:"city"`
	Count        int64   `json:"count"`
	AvgTimeSpent float64 `json:"avgTimeSpent"`
}

type DeviceStat struct {
	Type         DeviceType `json:"type"`
	Count        int64      `json:"count"`
	AvgTimeSpent float64    `json:"avgTimeSpent"`
}

type ReferrerStat struct {
	Source       string  `json:"source"`
	Campaign     string  `json:"campaign"`
	Count        int64   `json:"count"`
	AvgTimeSpent float64 `json:"avgTimeSpent"`
}

type HourStat struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type Overview struct {
	TotalSessions  int64           `json:"totalSessions"`
	TotalViews     int64           `json:"totalViews"`
	TotalDownloads int64           `json:"totalDownloads"`
	RecentSessions []Session       `json:"recentSessions"`
	TopResumes     []ResumeSummary `json:"topResumes"`
	DailyStats     []DailyStat     `json:"dailyStats"`
}

type ResumeReport struct {
	Resume        ResumeSummary  `json:"resume"`
	Sessions      []Session      `json:"sessions"`
	GeoStats      []GeoStat      `json:"geoStats"`
	DeviceStats   []DeviceStat   `json:"deviceStats"`
	ReferrerStats []ReferrerStat `json:"referrerStats"`
	TimeStats     []HourStat     `json:"timeStats"`
}

type Comparison struct {
	ResumeID     uuid.UUID `json:"resumeId"`
	Name         string    `json:"name"`
	Analytics    Counters  `json:"analytics"`
	Sessions     int64     `json:"sessions"`
	AvgTimeSpent float64   `json:"avgTimeSpent"`
}

// LiveEvent is published whenever a session is created or an event tracked.
type LiveEvent struct {
	OwnerID   uuid.UUID `json:"ownerId"`
	ResumeID  uuid.UUID `json:"resumeId"`
	SessionID string    `json:"sessionId"`
	Type      EventType `json:"type"`
	NewVisit  bool      `json:"newVisit"`
	Location  string    `json:"location,omitempty"`
	Device    string    `json:"device,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
