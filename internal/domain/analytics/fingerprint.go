package analytics

import (
	"crypto/md5"
	"encoding/hex"
	"net"
	"strings"

	"github.com/google/uuid"
)

const defaultIP = "127.0.0.1"

// SessionID fingerprints a visitor on a resume. It is a grouping heuristic,
// not an identity: visitors behind one NAT with the same browser collide.
func SessionID(ip, userAgent string, resumeID uuid.UUID) string {
	sum := md5.Sum([]byte(ip + "-" + userAgent + "-" + resumeID.String()))
	return hex.EncodeToString(sum[:])[:12]
}

// ClientIP picks the visitor address: first X-Forwarded-For hop, then
// X-Real-IP, then the socket peer.
func ClientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		if first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0]); first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	return defaultIP
}
