package readthrough

import (
	"github.com/mozilla-services/go-readthrough-cache/internal/cache"
	"github.com/mozilla-services/go-readthrough-cache/internal/shared/clock"
)

// Loader produces the value for a key on cache miss. It runs outside the
// cache lock and may be invoked concurrently for the same key unless
// coalescing is enabled in the config.
type Loader[K comparable, V any] = cache.Loader[K, V]

// GetOption customizes a single Get call.
type GetOption = cache.GetOption

// ForceStore retains the loaded value even on the key's first observed access.
func ForceStore() GetOption {
	return cache.ForceStore()
}

// Metrics exposes cache-level observability hooks; NoopMetrics is the default.
type Metrics = cache.Metrics

type NoopMetrics = cache.NoopMetrics

// Clock provides the cache's notion of now; useful for deterministic tests.
type Clock = clock.Clock

// Options configures code-level collaborators that have no place in YAML.
// Zero values are safe: a nil Clock means time.Now, a nil Metrics means
// NoopMetrics, a nil OnEvict means no callback.
type Options[K comparable, V any] struct {
	// Clock overrides the time source used for entry aging.
	Clock Clock

	// Metrics receives Hit/Miss/Store/Evict/Size signals.
	Metrics Metrics

	// OnEvict is called for every stored entry removed by a purge, outside
	// the cache lock; keep callbacks lightweight anyway.
	OnEvict func(key K, value V)
}
