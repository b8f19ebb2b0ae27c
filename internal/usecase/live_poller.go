package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

type weekSyncer interface {
	SyncWeek(ctx context.Context, week int) (StatSyncReport, error)
}

type deadlineSweeper interface {
	SweepDeadlines(ctx context.Context) ([]BulkLockResult, error)
}

// LivePoller re-syncs the current week on a fixed interval and sweeps passed
// deadlines. A tick that fires while the previous cycle is still running is
// skipped.
type LivePoller struct {
	syncer   weekSyncer
	sweeper  deadlineSweeper
	weeks    currentWeekResolver
	interval time.Duration
	logger   *logging.Logger

	inFlight atomic.Bool
	skipped  atomic.Int64
}

func NewLivePoller(syncer weekSyncer, sweeper deadlineSweeper, weeks currentWeekResolver, interval time.Duration, logger *logging.Logger) *LivePoller {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LivePoller{
		syncer:   syncer,
		sweeper:  sweeper,
		weeks:    weeks,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks immediately and then every interval until ctx is cancelled.
func (p *LivePoller) Run(ctx context.Context) {
	p.logger.InfoContext(ctx, "live poller started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "live poller stopped", "skipped_ticks", p.skipped.Load())
			return
		case <-ticker.C:
			p.trigger(ctx)
		}
	}
}

func (p *LivePoller) trigger(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.logger.WarnContext(ctx, "live poll skipped, previous cycle still running")
		return
	}
	go func() {
		defer p.inFlight.Store(false)
		p.Tick(ctx)
	}()
}

// Tick runs one sweep and sync cycle. Failures are logged and retried on the
// next tick.
func (p *LivePoller) Tick(ctx context.Context) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LivePoller.Tick")
	defer span.End()

	if p.sweeper != nil {
		results, err := p.sweeper.SweepDeadlines(ctx)
		if err != nil {
			p.logger.ErrorContext(ctx, "deadline sweep failed", "error", err)
		}
		for _, result := range results {
			p.logger.InfoContext(ctx, "deadline sweep locked rosters", "week", result.Week, "locked", result.Locked, "failed", result.Failed)
		}
	}

	week, err := p.weeks.CurrentWeek(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "resolve current week failed", "error", err)
		return
	}
	if _, err := p.syncer.SyncWeek(ctx, week); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.ErrorContext(ctx, "live stat sync failed", "week", week, "error", err)
	}
}

// Skipped reports how many ticks were dropped because a cycle overran.
func (p *LivePoller) Skipped() int64 {
	return p.skipped.Load()
}
