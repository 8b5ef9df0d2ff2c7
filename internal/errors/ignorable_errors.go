package errors

import "strings"

// ignorableErrorSubstrings are fragments of error messages produced when a
// client walks away mid-stream or a context is canceled. These are expected
// during normal operation and should be logged at debug level at most.
var ignorableErrorSubstrings = []string{
	"context canceled",
	"connection reset by peer",
	"broken pipe",
	"use of closed network connection",
	"request canceled",
	"client disconnected",
}

// IsIgnorableError reports whether an error stems from client disconnection
// or cancellation rather than a genuine failure.
func IsIgnorableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, substr := range ignorableErrorSubstrings {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
