package errors

import (
	"strings"

	"github.com/tidwall/gjson"
)

// maxErrorBodyLength caps how much of an upstream error body is surfaced.
const maxErrorBodyLength = 2048

// errorMessagePaths lists the JSON paths tried when extracting a human
// readable message from an upstream error body, in priority order.
var errorMessagePaths = []string{
	"error.message",
	"error_msg",
	"error",
	"message",
	"detail",
}

// ParseUpstreamError extracts a readable message from an upstream error
// body. Serving platforms disagree on the envelope, so several known paths
// are tried before falling back to the raw body.
func ParseUpstreamError(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	if gjson.ValidBytes(body) {
		for _, path := range errorMessagePaths {
			if result := gjson.GetBytes(body, path); result.Exists() && result.Type == gjson.String {
				if msg := strings.TrimSpace(result.String()); msg != "" {
					return truncateString(msg, maxErrorBodyLength)
				}
			}
		}
	}

	return truncateString(strings.TrimSpace(string(body)), maxErrorBodyLength)
}

func truncateString(s string, maxLength int) string {
	if len(s) > maxLength {
		return s[:maxLength]
	}
	return s
}
