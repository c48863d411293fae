package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store persists usage counters per limit type and window.
type Store interface {
	GetUsage(ctx context.Context, limitType LimitType, window TimeWindow) (int64, time.Time, error)
	IncrementUsage(ctx context.Context, limitType LimitType, window TimeWindow, amount int64) (int64, time.Time, error)
}

type usageKey struct {
	LimitType LimitType
	Window    TimeWindow
}

type usageRecord struct {
	Amount    int64
	WindowEnd time.Time
}

// MemoryStore is a thread-safe in-memory Store, sufficient for a
// single-process CLI run.
type MemoryStore struct {
	data map[usageKey]*usageRecord
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[usageKey]*usageRecord),
	}
}

// GetUsage gets current usage for a specific limit.
func (s *MemoryStore) GetUsage(ctx context.Context, limitType LimitType, window TimeWindow) (int64, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := usageKey{LimitType: limitType, Window: window}
	record, exists := s.data[key]
	if !exists {
		return 0, time.Now().Add(window.Duration()), nil
	}

	now := time.Now()
	if record.WindowEnd.Before(now) {
		return 0, now.Add(window.Duration()), nil
	}

	return record.Amount, record.WindowEnd, nil
}

// IncrementUsage increments usage for a specific limit, resetting the
// window first if it has expired.
func (s *MemoryStore) IncrementUsage(ctx context.Context, limitType LimitType, window TimeWindow, amount int64) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{LimitType: limitType, Window: window}
	now := time.Now()

	record, exists := s.data[key]
	if !exists {
		record = &usageRecord{
			Amount:    amount,
			WindowEnd: now.Add(window.Duration()),
		}
		s.data[key] = record
		return record.Amount, record.WindowEnd, nil
	}

	if record.WindowEnd.Before(now) {
		record.Amount = amount
		record.WindowEnd = now.Add(window.Duration())
	} else {
		record.Amount += amount
	}

	return record.Amount, record.WindowEnd, nil
}
