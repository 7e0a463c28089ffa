package analytics

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseDevice classifies a User-Agent string. Tablets are recognised by
// marker, phones by the parser's mobile flag, anything with a known
// browser counts as desktop.
func ParseDevice(userAgent string) DeviceInfo {
	info := DeviceInfo{
		Type:      DeviceUnknown,
		Browser:   "Unknown",
		OS:        "Unknown",
		UserAgent: userAgent,
	}
	if strings.TrimSpace(userAgent) == "" {
		return info
	}

	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	osInfo := ua.OSInfo()

	info.Browser = joinNameVersion(name, version)
	info.OS = joinNameVersion(osInfo.Name, osInfo.Version)

	switch {
	case ua.Bot():
		info.Type = DeviceUnknown
	case isTablet(userAgent):
		info.Type = DeviceTablet
	case ua.Mobile() || strings.Contains(strings.ToLower(osInfo.Name), "mobile"):
		info.Type = DeviceMobile
	case name != "":
		info.Type = DeviceDesktop
	}
	return info
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return true
	}
	return strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")
}

func joinNameVersion(name, version string) string {
	if name == "" {
		name = "Unknown"
	}
	return strings.TrimSpace(name + " " + version)
}
