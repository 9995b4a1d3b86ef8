package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// TimerLister reads stored timers.
type TimerLister interface {
	ListTimers(ctx context.Context, filter repository.TimerFilter) ([]domain.Timer, error)
}

// Syncer accepts a full snapshot of the timers that can still tick.
type Syncer interface {
	Sync(timers []domain.Timer)
}

type ResyncConfig struct {
	Interval time.Duration
}

// ResyncProcessor periodically reloads every non-completed timer into the
// countdown so missed events and failed completions heal on their own.
type ResyncProcessor struct {
	timers  TimerLister
	sink    Syncer
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ResyncConfig
}

func NewResyncProcessor(timers TimerLister, sink Syncer, monitor ConnectionHealth, logger *zap.Logger, cfg ResyncConfig) *ResyncProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rp := &ResyncProcessor{
		timers:  timers,
		sink:    sink,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	seconds := int(cfg.Interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	schedule := fmt.Sprintf("@every %ds", seconds)
	_, _ = rp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rp.Resync(ctx); err != nil {
			rp.logger.Error("countdown resync failed", zap.Error(err))
		}
	})

	return rp
}

// Start launches the cron scheduler.
func (rp *ResyncProcessor) Start() {
	if rp == nil || rp.cron == nil {
		return
	}
	rp.cron.Start()
	rp.logger.Info("countdown resync started", zap.Duration("interval", rp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (rp *ResyncProcessor) Stop(ctx context.Context) {
	if rp == nil || rp.cron == nil {
		return
	}
	stopCtx := rp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rp.logger.Info("countdown resync stopped")
}

// Resync runs one reload synchronously. It is skipped while the store is offline.
func (rp *ResyncProcessor) Resync(ctx context.Context) error {
	if rp == nil || rp.timers == nil || rp.sink == nil {
		return nil
	}
	if rp.monitor != nil && !rp.monitor.IsOnline() {
		rp.logger.Debug("skipping countdown resync (offline)")
		return nil
	}

	timers, err := rp.timers.ListTimers(ctx, repository.TimerFilter{})
	if err != nil {
		return err
	}
	rp.sink.Sync(timers)
	rp.logger.Debug("countdown resynced", zap.Int("timers", len(timers)))
	return nil
}
