package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/mozilla-services/go-readthrough-cache/config"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	cache    cacheSource
	sweeper  sweepSource
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	cache cacheSource,
	sweeper sweepSource,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	l := &Logs{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger,
		cache:   cache,
		sweeper: sweeper,
	}
	if cfg.Telemetry.Enabled() {
		l.interval = cfg.Telemetry.Interval
	}
	return l.run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Telemetry.Enabled() {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	s := newSampler(l.cache, l.sweeper)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("readthrough_cache",
				append(common,
					"hits", int64(d.hits),
					"misses", int64(d.misses),
					"loads", int64(d.loads),
					"load_errors", int64(d.loadErrors),
					"stores", int64(d.stores),
				)...,
			)

			if l.cfg.Sweep.Enabled() {
				l.logger.Info("sweeper",
					append(common,
						"sweeps", int64(d.sweeps),
						"evicted_entries", int64(d.evictedEntries),
						"pruned_keys", int64(d.prunedKeys),
					)...,
				)
			}

			l.logger.Info("storage",
				append(common,
					"entries", l.cache.Len(),
					"tracked_keys", l.cache.TrackedLen(),
					"ttl", l.cfg.TTL.String(),
				)...,
			)
		}
	}
}
