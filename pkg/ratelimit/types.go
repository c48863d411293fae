// Package ratelimit enforces client-side token and request budgets so runs
// stay under the upstream API's quotas.
package ratelimit

import "time"

// TimeWindow represents a rate limiting time window.
type TimeWindow string

const (
	WindowMinute TimeWindow = "minute"
	WindowHour   TimeWindow = "hour"
	WindowDay    TimeWindow = "day"
)

// Duration returns the duration for the time window.
func (w TimeWindow) Duration() time.Duration {
	switch w {
	case WindowMinute:
		return time.Minute
	case WindowHour:
		return time.Hour
	case WindowDay:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// LimitType represents the type of rate limit.
type LimitType string

const (
	LimitTypeToken LimitType = "token" // token usage limit
	LimitTypeCount LimitType = "count" // request count limit
)

// Usage represents current usage for a specific limit.
type Usage struct {
	LimitType  LimitType  `json:"limit_type"`
	Window     TimeWindow `json:"window"`
	Current    int64      `json:"current"`
	Limit      int64      `json:"limit"`
	WindowEnd  time.Time  `json:"window_end"`
	Remaining  int64      `json:"remaining"`
	Percentage float64    `json:"percentage"`
}

// CheckResult represents the result of a rate limit check.
type CheckResult struct {
	Allowed    bool           `json:"allowed"`
	Reason     string         `json:"reason,omitempty"`
	Usages     []Usage        `json:"usages"`
	RetryAfter *time.Duration `json:"retry_after,omitempty"`
}
