package analytics

import (
	"testing"

	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/geo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionID(t *testing.T) {
	resumeID := uuid.MustParse("6f1c1d7e-8a0b-4c8e-9d1f-2a3b4c5d6e7f")
	ua := "Mozilla/5.0"

	id := SessionID("203.0.113.9", ua, resumeID)
	assert.Len(t, id, 12)
	assert.Equal(t, id, SessionID("203.0.113.9", ua, resumeID))
	assert.NotEqual(t, id, SessionID("203.0.113.10", ua, resumeID))
	assert.NotEqual(t, id, SessionID("203.0.113.9", ua, uuid.New()))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		forwardedFor string
		realIP       string
		remoteAddr   string
		want         string
	}{
		{"first forwarded hop", "198.51.100.7, 10.0.0.1", "10.0.0.2", "10.0.0.3:1234", "198.51.100.7"},
		{"real ip", "", " 198.51.100.8 ", "10.0.0.3:1234", "198.51.100.8"},
		{"peer with port", "", "", "198.51.100.9:5555", "198.51.100.9"},
		{"peer without port", "", "", "198.51.100.10", "198.51.100.10"},
		{"nothing", "", "", "", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientIP(tt.forwardedFor, tt.realIP, tt.remoteAddr))
		})
	}
}

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want DeviceType
	}{
		{"empty", "", DeviceUnknown},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", DeviceDesktop},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1", DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/604.1", DeviceTablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", DeviceTablet},
		{"bot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", DeviceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseDevice(tt.ua)
			assert.Equal(t, tt.want, info.Type)
			assert.Equal(t, tt.ua, info.UserAgent)
			assert.NotEmpty(t, info.Browser)
			assert.NotEmpty(t, info.OS)
		})
	}
}

func TestParseReferrer(t *testing.T) {
	tests := []struct {
		header string
		want   Referrer
	}{
		{"", Referrer{Source: "direct"}},
		{"not a url", Referrer{Source: "direct"}},
		{"https://www.linkedin.com/feed/", Referrer{Source: "www.linkedin.com"}},
		{"https://example.com/r/jane?ref=careerfair", Referrer{Source: "example.com", Campaign: "careerfair"}},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReferrer(tt.header))
		})
	}
}

type stubLocator struct {
	loc geo.Location
	ok  bool
}

func (s stubLocator) Lookup(ip string) (geo.Location, bool) {
	return s.loc, s.ok
}

func TestResolveLocation(t *testing.T) {
	lat, lng := 52.52, 13.40
	berlin := stubLocator{ok: true, loc: geo.Location{Country: "Germany", City: "Berlin", Timezone: "Europe/Berlin", Lat: &lat, Lng: &lng}}

	t.Run("loopback uses default", func(t *testing.T) {
		loc := ResolveLocation("127.0.0.1", berlin)
		assert.Equal(t, "India", loc.Country)
		assert.Equal(t, "Mangaluru", loc.City)
		assert.Equal(t, "127.0.0.1", loc.IP)
	})

	t.Run("empty ip", func(t *testing.T) {
		assert.Equal(t, "unknown", ResolveLocation("", berlin).IP)
	})

	t.Run("resolved fields override defaults", func(t *testing.T) {
		loc := ResolveLocation("198.51.100.1", berlin)
		assert.Equal(t, "Germany", loc.Country)
		assert.Equal(t, "Berlin", loc.City)
		assert.Equal(t, "Asia", loc.Region, "missing region keeps the default")
		assert.Equal(t, "Europe/Berlin", loc.Timezone)
		assert.Equal(t, &lat, loc.Lat)
	})

	t.Run("unresolved", func(t *testing.T) {
		loc := ResolveLocation("198.51.100.1", stubLocator{})
		assert.Equal(t, "India", loc.Country)
		assert.Nil(t, loc.Lat)
	})

	t.Run("no locator", func(t *testing.T) {
		assert.Equal(t, "India", ResolveLocation("198.51.100.1", nil).Country)
	})
}

func TestParseEventType(t *testing.T) {
	for _, ev := range []string{"view", "download", "time", "exit"} {
		got, err := ParseEventType(ev)
		assert.NoError(t, err)
		assert.Equal(t, EventType(ev), got)
	}
	_, err := ParseEventType("scroll")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
