package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStore(start time.Time) (*MemoryStore, *time.Time) {
	clock := start
	s := NewMemoryStore()
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestMemoryStoreAllowWithinLimit(t *testing.T) {
	s, _ := newTestStore(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		allowed, retryAfter := s.Allow("ip:1.2.3.4", 5, time.Minute)
		assert.True(t, allowed, "hit %d should be allowed", i+1)
		assert.Zero(t, retryAfter)
	}

	allowed, retryAfter := s.Allow("ip:1.2.3.4", 5, time.Minute)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, 0)
}

func TestMemoryStoreWindowSlides(t *testing.T) {
	s, clock := newTestStore(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	allowed, _ := s.Allow("k", 2, time.Minute)
	assert.True(t, allowed)

	*clock = clock.Add(30 * time.Second)
	allowed, _ = s.Allow("k", 2, time.Minute)
	assert.True(t, allowed)

	allowed, retryAfter := s.Allow("k", 2, time.Minute)
	assert.False(t, allowed)
	// Oldest hit leaves the window in 30s.
	assert.Equal(t, 31, retryAfter)

	*clock = clock.Add(31 * time.Second)
	allowed, _ = s.Allow("k", 2, time.Minute)
	assert.True(t, allowed)
}

func TestMemoryStoreKeysIsolated(t *testing.T) {
	s, _ := newTestStore(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	allowed, _ := s.Allow("login:a", 1, time.Minute)
	assert.True(t, allowed)
	allowed, _ = s.Allow("login:a", 1, time.Minute)
	assert.False(t, allowed)

	allowed, _ = s.Allow("login:b", 1, time.Minute)
	assert.True(t, allowed)
}

func TestMemoryStorePrune(t *testing.T) {
	s, clock := newTestStore(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	s.Allow("stale", 10, time.Minute)
	*clock = clock.Add(2 * time.Minute)
	s.Allow("fresh", 10, time.Minute)

	s.Prune(time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.NotContains(t, s.hits, "stale")
	assert.Contains(t, s.hits, "fresh")
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("worker:%d", n%3)
			for j := 0; j < 50; j++ {
				s.Allow(key, 1000, time.Minute)
			}
		}(i)
	}
	wg.Wait()

	allowed, _ := s.Allow("worker:0", 1000, time.Minute)
	assert.True(t, allowed)
}
