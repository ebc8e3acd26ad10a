package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key request timestamps in process memory. State lives
// for the lifetime of the process and is not shared across instances; use
// RedisStore for multi-instance deployments.
type MemoryStore struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewMemoryStore creates an in-process sliding-window store.
func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		limit:   limit,
		window:  window,
		entries: make(map[string][]time.Time),
	}
}

// Allow implements Store. The mutex makes check-and-append atomic per key.
func (s *MemoryStore) Allow(_ context.Context, key string, now time.Time) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.window)
	kept := s.entries[key][:0]
	for _, ts := range s.entries[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		s.entries[key] = kept
		return false, len(kept), nil
	}

	kept = append(kept, now)
	s.entries[key] = kept
	return true, len(kept), nil
}

// Len reports the number of tracked keys, for monitoring.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
