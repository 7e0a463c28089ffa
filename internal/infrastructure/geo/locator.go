// Package geo resolves visitor IPs against an offline MaxMind database.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

type Location struct {
	Country  string
	Region   string
	City     string
	Timezone string
	Lat      *float64
	Lng      *float64
}

// Locator is safe for concurrent use. Without a database every lookup misses.
type Locator struct {
	reader *geoip2.Reader
}

// Open loads a GeoLite2/GeoIP2 City database. An empty path yields a
// Locator that never resolves anything.
func Open(path string) (*Locator, error) {
	if path == "" {
		return &Locator{}, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &Locator{reader: reader}, nil
}

// Lookup returns false for unparsable, private and unknown addresses.
func (l *Locator) Lookup(ip string) (Location, bool) {
	if l == nil || l.reader == nil {
		return Location{}, false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return Location{}, false
	}

	record, err := l.reader.City(parsed)
	if err != nil || record.Country.IsoCode == "" {
		return Location{}, false
	}

	loc := Location{
		Country:  record.Country.Names["en"],
		City:     record.City.Names["en"],
		Timezone: record.Location.TimeZone,
	}
	if loc.Country == "" {
		loc.Country = record.Country.IsoCode
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	if loc.Region == "" {
		loc.Region = record.Continent.Names["en"]
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		lat, lng := record.Location.Latitude, record.Location.Longitude
		loc.Lat, loc.Lng = &lat, &lng
	}
	return loc, true
}

func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
