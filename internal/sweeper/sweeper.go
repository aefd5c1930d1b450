package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mozilla-services/go-readthrough-cache/config"
)

var ErrSweeperNotResponded = errors.New("sweeper not responded")

type Sweeper interface {
	ForceCall(timeout time.Duration) error
	SweeperMetrics() (sweeps, evictedEntries, prunedKeys int64)
	Close() error
}

type purger interface {
	PurgeExpired() (evicted, pruned int64)
}

// SweepWorker wakes up once per interval and purges idle entries. The loop
// lives on the cache's context: cancelling it is the only stop path, so the
// worker never outlives the owning service.
type SweepWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.SweepCfg
	logger   *slog.Logger
	cache    purger
	counters *sweeperCounters
	invokeCh chan struct{}
}

func New(
	ctx context.Context,
	cfg *config.SweepCfg,
	logger *slog.Logger,
	cache purger,
) Sweeper {
	if !cfg.Enabled() {
		return &NoOpSweeper{}
	}

	ctx, cancel := context.WithCancel(ctx)
	return (&SweepWorker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		counters: newSweeperCounters(),
		invokeCh: make(chan struct{}),
	}).run()
}

// ForceCall triggers an out-of-schedule sweep and waits until the worker
// picks it up or the timeout elapses.
func (w *SweepWorker) ForceCall(timeout time.Duration) error {
	after := time.NewTimer(timeout)
	defer after.Stop()

	select {
	case <-w.ctx.Done():
	case w.invokeCh <- struct{}{}:
	case <-after.C:
		return ErrSweeperNotResponded
	}
	return nil
}

func (w *SweepWorker) SweeperMetrics() (sweeps, evictedEntries, prunedKeys int64) {
	return w.counters.snapshot()
}

func (w *SweepWorker) Close() error {
	w.cancel()
	return nil
}

func (w *SweepWorker) run() *SweepWorker {
	w.logger.Info("sweeper is running", "interval", w.cfg.Interval.String())

	go func() {
		defer w.logger.Info("sweeper is stopped")

		tick := time.NewTicker(w.cfg.Interval)
		defer tick.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-tick.C:
				w.sweep()
			case <-w.invokeCh:
				w.sweep()
			}
		}
	}()

	return w
}

func (w *SweepWorker) sweep() {
	evicted, pruned := w.cache.PurgeExpired()
	w.counters.sweeps.Add(1)
	if evicted > 0 {
		w.counters.evictedEntries.Add(evicted)
	}
	if pruned > 0 {
		w.counters.prunedKeys.Add(pruned)
	}
}
