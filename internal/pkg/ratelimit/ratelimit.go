// Package ratelimit implements a sliding-window request counter used by the
// edge middleware. The store is injected so a shared backend can replace the
// in-memory implementation in multi-instance deployments.
package ratelimit

import (
	"sync"
	"time"
)

// Store counts requests per key within a sliding time window.
type Store interface {
	// Allow records a hit for key and reports whether it stays within
	// limit hits per window. The second return value is the number of
	// seconds until the oldest hit leaves the window.
	Allow(key string, limit int, window time.Duration) (bool, int)
}

// MemoryStore is a single-process Store backed by an in-memory map.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryStore creates a new in-memory sliding window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Allow implements Store.
func (s *MemoryStore) Allow(key string, limit int, window time.Duration) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	recent := s.hits[key][:0]
	for _, t := range s.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= limit {
		s.hits[key] = recent
		retryAfter := int(recent[0].Add(window).Sub(now).Seconds()) + 1
		return false, retryAfter
	}

	s.hits[key] = append(recent, now)
	return true, 0
}

// Prune drops keys whose hits all fall outside the window. Called
// periodically to bound memory on long-running processes.
func (s *MemoryStore) Prune(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-window)
	for key, times := range s.hits {
		keep := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				keep = append(keep, t)
			}
		}
		if len(keep) == 0 {
			delete(s.hits, key)
		} else {
			s.hits[key] = keep
		}
	}
}
