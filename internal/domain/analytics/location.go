package analytics

import (
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/geo"
)

// GeoLocator resolves an IP to a place; ok is false when it cannot.
type GeoLocator interface {
	Lookup(ip string) (geo.Location, bool)
}

// defaultLocation is reported for loopback and unresolvable addresses.
var defaultLocation = Location{
	Country:  "India",
	Region:   "Asia",
	City:     "Mangaluru",
	Timezone: "Asia/Kolkata",
}

func ResolveLocation(ip string, locator GeoLocator) Location {
	loc := defaultLocation
	loc.IP = ip
	if ip == "" {
		loc.IP = "unknown"
		return loc
	}
	if ip == defaultIP || ip == "::1" || locator == nil {
		return loc
	}

	found, ok := locator.Lookup(ip)
	if !ok {
		return loc
	}
	if found.Country != "" {
		loc.Country = found.Country
	}
	if found.Region != "" {
		loc.Region = found.Region
	}
	if found.City != "" {
		loc.City = found.City
	}
	if found.Timezone != "" {
		loc.Timezone = found.Timezone
	}
	loc.Lat, loc.Lng = found.Lat, found.Lng
	return loc
}
