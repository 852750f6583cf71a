package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/emre/campuserp/internal/pkg/ratelimit"
)

type fakePruner struct{ calls atomic.Int64 }

func (f *fakePruner) Prune(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, nil
}

type fakeArchiver struct{ calls atomic.Int64 }

func (f *fakeArchiver) ArchiveExpired(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return 1, nil
}

func TestMaintenanceSweep(t *testing.T) {
	audit := &fakePruner{}
	notices := &fakeArchiver{}
	limiter := ratelimit.NewMemoryStore()
	limiter.Allow("stale", 10, time.Nanosecond)

	m := newMaintenance(time.Hour, time.Nanosecond, audit, notices, limiter, zerolog.Nop())
	m.sweep(context.Background())

	assert.Equal(t, int64(1), audit.calls.Load())
	assert.Equal(t, int64(1), notices.calls.Load())

	// The stale limiter key was pruned, so the next hit is a fresh window.
	allowed, _ := limiter.Allow("stale", 1, time.Hour)
	assert.True(t, allowed)
}

func TestMaintenanceRunStops(t *testing.T) {
	audit := &fakePruner{}
	notices := &fakeArchiver{}

	m := newMaintenance(5*time.Millisecond, time.Hour, audit, notices, ratelimit.NewMemoryStore(), zerolog.Nop())
	go m.run()

	assert.Eventually(t, func() bool { return audit.calls.Load() > 0 }, time.Second, time.Millisecond)
	m.shutdown()
}
