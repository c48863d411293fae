package ratelimit

import (
	"context"
	"testing"

	"github.com/brettstark73/crewbuilder/pkg/config"
)

func tokenLimitConfig(limit int64) *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Enabled: true,
		Limits: []config.LimitConfig{
			{Type: "token", Window: "minute", Limit: limit},
			{Type: "count", Window: "minute", Limit: 100},
		},
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, err := NewLimiter(&config.RateLimitConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	result, err := limiter.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.Allowed {
		t.Error("Check() disabled limiter should always allow")
	}
}

func TestLimiter_CheckAndRecord(t *testing.T) {
	ctx := context.Background()

	limiter, err := NewLimiter(tokenLimitConfig(1000), nil)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	result, err := limiter.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.Allowed {
		t.Fatal("Check() fresh limiter should allow")
	}
	if len(result.Usages) != 2 {
		t.Fatalf("Check() usages = %d, want 2", len(result.Usages))
	}

	if err := limiter.Record(ctx, 600, 1); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err = limiter.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.Allowed {
		t.Error("Check() under budget should allow")
	}

	usage := result.Usages[0]
	if usage.Current != 600 {
		t.Errorf("usage.Current = %d, want 600", usage.Current)
	}
	if usage.Remaining != 400 {
		t.Errorf("usage.Remaining = %d, want 400", usage.Remaining)
	}
}

func TestLimiter_Exceeded(t *testing.T) {
	ctx := context.Background()

	limiter, err := NewLimiter(tokenLimitConfig(1000), nil)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	if err := limiter.Record(ctx, 1000, 1); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err := limiter.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Allowed {
		t.Fatal("Check() at budget should deny")
	}
	if result.Reason == "" {
		t.Error("Check() denial should carry a reason")
	}
	if result.RetryAfter == nil || *result.RetryAfter <= 0 {
		t.Error("Check() denial should carry a positive RetryAfter")
	}
}

func TestLimiter_InvalidConfig(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled: true,
		Limits:  []config.LimitConfig{{Type: "bogus", Window: "minute", Limit: 1}},
	}
	if _, err := NewLimiter(cfg, nil); err == nil {
		t.Error("NewLimiter() should reject invalid config")
	}
}

func TestMemoryStore_WindowReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Record into an already expired window by injecting a stale record.
	amount, _, err := store.IncrementUsage(ctx, LimitTypeToken, WindowMinute, 100)
	if err != nil {
		t.Fatalf("IncrementUsage() error = %v", err)
	}
	if amount != 100 {
		t.Errorf("IncrementUsage() = %d, want 100", amount)
	}

	key := usageKey{LimitType: LimitTypeToken, Window: WindowMinute}
	store.mu.Lock()
	store.data[key].WindowEnd = store.data[key].WindowEnd.Add(-2 * WindowMinute.Duration())
	store.mu.Unlock()

	current, _, err := store.GetUsage(ctx, LimitTypeToken, WindowMinute)
	if err != nil {
		t.Fatalf("GetUsage() error = %v", err)
	}
	if current != 0 {
		t.Errorf("GetUsage() after window expiry = %d, want 0", current)
	}

	amount, _, err = store.IncrementUsage(ctx, LimitTypeToken, WindowMinute, 50)
	if err != nil {
		t.Fatalf("IncrementUsage() error = %v", err)
	}
	if amount != 50 {
		t.Errorf("IncrementUsage() after expiry = %d, want fresh 50", amount)
	}
}
