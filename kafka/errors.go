package kafka

import (
	"context"
	"errors"
	"strings"
)

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"broker not available",
	"leader not available",
	"not leader for partition",
	"request timed out",
	"dial tcp",
}

// IsRetryableError reports whether a write failure may succeed on retry.
// Context cancellation is never retryable.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
