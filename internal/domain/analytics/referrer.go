package analytics

import (
	"net/url"
)

const directSource = "direct"

// ParseReferrer derives the traffic source from a Referer header: the
// host becomes the source and its ref query parameter the campaign.
func ParseReferrer(header string) Referrer {
	ref := Referrer{Source: directSource}
	if header == "" {
		return ref
	}
	u, err := url.Parse(header)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return ref
	}
	ref.Source = u.Hostname()
	ref.Campaign = u.Query().Get("ref")
	return ref
}
