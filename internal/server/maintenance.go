package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/emre/campuserp/internal/pkg/ratelimit"
)

type auditPruner interface {
	Prune(ctx context.Context) (int64, error)
}

type noticeArchiver interface {
	ArchiveExpired(ctx context.Context) (int64, error)
}

// maintenance runs the periodic housekeeping sweeps: audit retention,
// notice expiry and rate-limiter memory pruning.
type maintenance struct {
	interval time.Duration
	window   time.Duration
	audit    auditPruner
	notices  noticeArchiver
	limiter  ratelimit.Store
	logger   zerolog.Logger
	stop     chan struct{}
	done     chan struct{}
}

func newMaintenance(interval, window time.Duration, audit auditPruner, notices noticeArchiver, limiter ratelimit.Store, lgr zerolog.Logger) *maintenance {
	return &maintenance{
		interval: interval,
		window:   window,
		audit:    audit,
		notices:  notices,
		limiter:  limiter,
		logger:   lgr,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *maintenance) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep(context.Background())
		}
	}
}

func (m *maintenance) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := m.audit.Prune(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Audit retention sweep failed")
	}

	if archived, err := m.notices.ArchiveExpired(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Notice expiry sweep failed")
	} else if archived > 0 {
		m.logger.Info().Int64("archived", archived).Msg("Archived expired notices")
	}

	if pruner, ok := m.limiter.(interface{ Prune(time.Duration) }); ok {
		pruner.Prune(m.window)
	}
}

func (m *maintenance) shutdown() {
	close(m.stop)
	<-m.done
}
