package readthrough

import (
	"context"
	"io"
	"log/slog"

	"github.com/mozilla-services/go-readthrough-cache/config"
	"github.com/mozilla-services/go-readthrough-cache/internal/cache"
	"github.com/mozilla-services/go-readthrough-cache/internal/dump"
	"github.com/mozilla-services/go-readthrough-cache/internal/shared/clock"
	"github.com/mozilla-services/go-readthrough-cache/internal/sweeper"
	"github.com/mozilla-services/go-readthrough-cache/internal/telemetry"
)

type TTLCache[K comparable, V any] interface {
	cache.Cacher[K, V]
	sweeper.Sweeper
	telemetry.Logger
	dump.Dumper
	io.Closer
}

type Cache[K comparable, V any] struct {
	cache.Cacher[K, V]
	sweeper.Sweeper
	telemetry.Logger
	dump.Dumper
	cls context.CancelFunc
}

// New builds a read-through idle-TTL cache around loader and starts the
// background workers enabled in cfg. Cancelling ctx or calling Close stops
// them; the cache itself stays usable after Close, only unattended.
func New[K comparable, V any](
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	loader Loader[K, V],
) *Cache[K, V] {
	return NewWithOptions(ctx, cfg, logger, loader, Options[K, V]{})
}

func NewWithOptions[K comparable, V any](
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	loader Loader[K, V],
	opt Options[K, V],
) *Cache[K, V] {
	if cfg == nil || cfg.TTL <= 0 {
		panic("readthrough: cfg.TTL must be positive")
	}
	cfg.AdjustConfig()

	if opt.Clock == nil {
		opt.Clock = clock.System()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	ctx, cancel := context.WithCancel(ctx)
	cacher := cache.New(cfg, logger, loader, opt.Clock, opt.Metrics, opt.OnEvict)
	sweep := sweeper.New(ctx, cfg.Sweep, logger, cacher)
	telemeter := telemetry.New(ctx, cfg, logger, cacher, sweep)
	dumper := dump.New[K, V](cfg.Persistence, cacher)
	return &Cache[K, V]{cls: cancel, Cacher: cacher, Sweeper: sweep, Logger: telemeter, Dumper: dumper}
}

func (c *Cache[K, V]) Close() error {
	c.cls()
	return nil
}
