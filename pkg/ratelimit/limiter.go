package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/brettstark73/crewbuilder/pkg/config"
)

// Limiter checks and records usage against configured budgets.
type Limiter struct {
	config *config.RateLimitConfig
	store  Store
}

// NewLimiter creates a limiter from config. A nil store defaults to the
// in-memory store.
func NewLimiter(cfg *config.RateLimitConfig, store Store) (*Limiter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rate limit config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}
	if store == nil {
		store = NewMemoryStore()
	}

	return &Limiter{config: cfg, store: store}, nil
}

// Check verifies whether another request is allowed without recording usage.
func (l *Limiter) Check(ctx context.Context) (*CheckResult, error) {
	if !l.config.Enabled {
		return &CheckResult{Allowed: true}, nil
	}

	result := &CheckResult{
		Allowed: true,
		Usages:  make([]Usage, 0, len(l.config.Limits)),
	}

	now := time.Now()
	var earliestRetry *time.Time

	for _, limit := range l.config.Limits {
		limitType := LimitType(limit.Type)
		window := TimeWindow(limit.Window)

		current, windowEnd, err := l.store.GetUsage(ctx, limitType, window)
		if err != nil {
			return nil, fmt.Errorf("failed to get usage for %s/%s: %w", limitType, window, err)
		}

		if windowEnd.Before(now) {
			current = 0
			windowEnd = now.Add(window.Duration())
		}

		remaining := limit.Limit - current
		if remaining < 0 {
			remaining = 0
		}

		result.Usages = append(result.Usages, Usage{
			LimitType:  limitType,
			Window:     window,
			Current:    current,
			Limit:      limit.Limit,
			WindowEnd:  windowEnd,
			Remaining:  remaining,
			Percentage: float64(current) / float64(limit.Limit) * 100,
		})

		if current >= limit.Limit {
			result.Allowed = false
			if result.Reason == "" {
				result.Reason = fmt.Sprintf("%s limit exceeded for %s window (%d/%d)",
					limitType, window, current, limit.Limit)
			}
			if earliestRetry == nil || windowEnd.Before(*earliestRetry) {
				earliestRetry = &windowEnd
			}
		}
	}

	if !result.Allowed && earliestRetry != nil {
		if retry := time.Until(*earliestRetry); retry > 0 {
			result.RetryAfter = &retry
		}
	}

	return result, nil
}

// Record accumulates actual usage: tokens consumed and requests made.
func (l *Limiter) Record(ctx context.Context, tokenCount, requestCount int64) error {
	if !l.config.Enabled {
		return nil
	}

	for _, limit := range l.config.Limits {
		limitType := LimitType(limit.Type)
		window := TimeWindow(limit.Window)

		var amount int64
		switch limitType {
		case LimitTypeToken:
			amount = tokenCount
		case LimitTypeCount:
			amount = requestCount
		}
		if amount == 0 {
			continue
		}

		if _, _, err := l.store.IncrementUsage(ctx, limitType, window, amount); err != nil {
			return fmt.Errorf("failed to record usage for %s/%s: %w", limitType, window, err)
		}
	}

	return nil
}
