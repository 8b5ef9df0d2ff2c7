package utils

import (
	"net/url"
	"strings"
)

var sensitiveQueryParams = []string{"key", "token", "auth_key"}

// SanitizeURLForLog redacts credential-bearing query parameters so request
// URLs are safe to log.
func SanitizeURLForLog(u *url.URL) string {
	query := u.Query()
	changed := false
	for _, param := range sensitiveQueryParams {
		if query.Has(param) {
			query.Set(param, "[REDACTED]")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}

	sanitized := *u
	sanitized.RawQuery = query.Encode()
	return sanitized.String()
}

// MaskToken masks a bearer token for safe logging.
// Example: "dapi1234567890abcdef" -> "dapi****cdef"
func MaskToken(token string) string {
	length := len(token)
	if length <= 8 {
		return "****"
	}
	var b strings.Builder
	b.Grow(12)
	b.WriteString(token[:4])
	b.WriteString("****")
	b.WriteString(token[length-4:])
	return b.String()
}

// TruncateString shortens a string to a maximum length.
func TruncateString(s string, maxLength int) string {
	if len(s) > maxLength {
		return s[:maxLength]
	}
	return s
}
