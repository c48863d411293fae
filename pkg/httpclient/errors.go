package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// RetryableError indicates a request that failed after exhausting retries
// but could succeed later, typically after a rate limit window resets.
type RetryableError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("HTTP %d: %s (retry after %v)", e.StatusCode, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err represents a rate limit rejection.
func IsRateLimited(err error) bool {
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		return retryErr.StatusCode == 429
	}
	return false
}
