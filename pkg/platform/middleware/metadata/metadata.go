// Package metadata records who is calling: client IP, raw User-Agent and a
// short device display name used in audit events.
package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"lifedash/pkg/requestcontext"
)

// UnknownDevice is the display name for an empty User-Agent.
const UnknownDevice = "Unknown Device"

// ClientMetadata puts the client IP, User-Agent and device name on the
// request context. Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(),
			ClientIPFromRequest(r),
			userAgent,
			ParseUserAgent(userAgent),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseUserAgent renders a User-Agent as "<browser> on <platform>".
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownDevice
	}
	ua := useragent.New(raw)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	return strings.TrimSpace(browser + " on " + platformName(ua))
}

func platformName(ua *useragent.UserAgent) string {
	osName := ua.OS()
	platform := ua.Platform()
	switch {
	case strings.Contains(platform, "iPhone"):
		return "iPhone"
	case strings.Contains(platform, "iPad"):
		return "iPad"
	case strings.Contains(osName, "Android"):
		return "Android"
	case strings.Contains(osName, "Mac OS X"):
		return "macOS"
	case strings.HasPrefix(osName, "Windows"):
		return "Windows"
	case strings.Contains(osName, "Linux"):
		return "Linux"
	case osName != "":
		return osName
	case platform != "":
		return platform
	default:
		return "Unknown OS"
	}
}

// ClientIPFromRequest extracts the client IP, honoring the first
// X-Forwarded-For hop and X-Real-IP set by proxies.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port", or "[::1]:port" for IPv6.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}

	return "unknown"
}
