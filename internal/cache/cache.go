package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mozilla-services/go-readthrough-cache/config"
	"github.com/mozilla-services/go-readthrough-cache/internal/shared/clock"
)

type Cacher[K comparable, V any] interface {
	Contains(key K) bool
	Get(ctx context.Context, key K, opts ...GetOption) (V, error)
	Warm(ctx context.Context, keys ...K) error
	PurgeExpired() (evicted, pruned int64)
	Len() int64
	TrackedLen() int64
	CacheMetrics() (hits, misses, loads, loadErrors, stores int64)
}

// Cache is a read-through memoization cache with idle expiry. Values live in
// storage; lastAccessed tracks recency for every key ever requested, stored
// or not. A key graduates into storage on its second observed access (or when
// forced), so one-off keys never occupy memory beyond their timestamp.
//
// One mutex guards both maps: a hit bumps its timestamp, a store publishes
// value and timestamp, and a purge drops the pair, each as one critical
// section. Loaders run outside the lock, so two first-misses on the same key
// may both invoke the loader unless CoalesceLoads is set.
type Cache[K comparable, V any] struct {
	mu           sync.RWMutex
	storage      map[K]V
	lastAccessed map[K]time.Time

	cfg      *config.Cache
	loader   Loader[K, V]
	logger   *slog.Logger
	clock    clock.Clock
	counters *counters
	metrics  Metrics
	onEvict  func(key K, value V)
	sf       singleflight.Group
}

// victim is an expired key collected under the lock so that eviction
// callbacks and metrics can run after it is released. retained is false for
// keys that only had an access-log entry.
type victim[K comparable, V any] struct {
	key      K
	value    V
	retained bool
}

func New[K comparable, V any](
	cfg *config.Cache,
	logger *slog.Logger,
	loader Loader[K, V],
	clk clock.Clock,
	m Metrics,
	onEvict func(key K, value V),
) *Cache[K, V] {
	return &Cache[K, V]{
		storage:      make(map[K]V),
		lastAccessed: make(map[K]time.Time),
		cfg:          cfg,
		loader:       loader,
		logger:       logger,
		clock:        clk,
		counters:     newCounters(),
		metrics:      m,
		onEvict:      onEvict,
	}
}

// Contains reports whether a retained value exists for key. It consults only
// the value storage, never the access log, and has no side effects.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.storage[key]
	return ok
}

// Get returns the value for key, invoking the loader on miss. The loaded
// value is retained if the key was seen before (its access-log entry survived
// the last sweep) or if ForceStore was given. Every successful call, hit or
// miss, refreshes the key's recency; a loader error leaves both maps
// untouched.
func (c *Cache[K, V]) Get(ctx context.Context, key K, opts ...GetOption) (V, error) {
	var opt getOptions
	for _, o := range opts {
		o(&opt)
	}

	c.mu.Lock()
	if value, ok := c.storage[key]; ok {
		c.lastAccessed[key] = c.clock.Now()
		c.mu.Unlock()

		c.counters.hits.Add(1)
		c.metrics.Hit()
		return value, nil
	}
	_, seen := c.lastAccessed[key]
	c.mu.Unlock()

	c.counters.misses.Add(1)
	c.metrics.Miss()

	value, err := c.load(ctx, key)
	if err != nil {
		c.counters.loadErrors.Add(1)
		var zero V
		return zero, err
	}
	c.counters.loads.Add(1)

	storeItem := opt.forceStore || seen

	c.mu.Lock()
	c.lastAccessed[key] = c.clock.Now()
	if storeItem {
		c.storage[key] = value
	}
	stored, tracked := len(c.storage), len(c.lastAccessed)
	c.mu.Unlock()

	if storeItem {
		c.counters.stores.Add(1)
		c.metrics.Store()
		c.metrics.Size(stored, tracked)
		c.logger.Info("storing entry", "key", key)
	}

	return value, nil
}

// Warm force-loads the given keys so they are retained before the first real
// request arrives. It stops at the first loader error.
func (c *Cache[K, V]) Warm(ctx context.Context, keys ...K) error {
	for _, key := range keys {
		if _, err := c.Get(ctx, key, ForceStore()); err != nil {
			return fmt.Errorf("warm key %v: %w", key, err)
		}
	}
	return nil
}

// PurgeExpired removes every key whose last access is strictly older than
// TTL: its value (if retained) and its access-log entry go together. Keys
// tracked but never stored are simply pruned from the log. A last-access time
// in the future (backward clock jump) never qualifies.
func (c *Cache[K, V]) PurgeExpired() (evicted, pruned int64) {
	cutoff := c.clock.Now().Add(-c.cfg.TTL)

	var victims []victim[K, V]

	c.mu.Lock()
	for key, lastAccessed := range c.lastAccessed {
		if lastAccessed.Before(cutoff) {
			v := victim[K, V]{key: key}
			if value, ok := c.storage[key]; ok {
				v.value, v.retained = value, true
				delete(c.storage, key)
				evicted++
			} else {
				pruned++
			}
			delete(c.lastAccessed, key)
			victims = append(victims, v)
		}
	}
	stored, tracked := len(c.storage), len(c.lastAccessed)
	c.mu.Unlock()

	for _, v := range victims {
		if v.retained {
			c.metrics.Evict()
			c.logger.Info("evicting entry", "key", v.key)
			if c.onEvict != nil {
				c.onEvict(v.key, v.value)
			}
		}
	}
	if len(victims) > 0 {
		c.metrics.Size(stored, tracked)
	}

	return evicted, pruned
}

// Len returns the number of retained values.
func (c *Cache[K, V]) Len() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.storage))
}

// TrackedLen returns the number of keys with a recency record, retained or not.
func (c *Cache[K, V]) TrackedLen() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.lastAccessed))
}

func (c *Cache[K, V]) CacheMetrics() (hits, misses, loads, loadErrors, stores int64) {
	return c.counters.snapshot()
}

// Export copies both maps for snapshotting. The copies are detached from the
// cache and safe to serialize without holding any lock.
func (c *Cache[K, V]) Export() (entries map[K]V, accessed map[K]time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries = make(map[K]V, len(c.storage))
	for key, value := range c.storage {
		entries[key] = value
	}
	accessed = make(map[K]time.Time, len(c.lastAccessed))
	for key, lastAccessed := range c.lastAccessed {
		accessed[key] = lastAccessed
	}
	return entries, accessed
}

// Import merges a snapshot back into the cache, skipping keys whose recorded
// access time is already older than TTL. Values present in the snapshot but
// not tracked in it are ignored (storage must stay a subset of the log).
// Existing entries are not overwritten.
func (c *Cache[K, V]) Import(entries map[K]V, accessed map[K]time.Time) (restored int64) {
	cutoff := c.clock.Now().Add(-c.cfg.TTL)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, lastAccessed := range accessed {
		if lastAccessed.Before(cutoff) {
			continue
		}
		if _, ok := c.lastAccessed[key]; ok {
			continue
		}
		c.lastAccessed[key] = lastAccessed
		if value, ok := entries[key]; ok {
			c.storage[key] = value
			restored++
		}
	}
	return restored
}

func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	if !c.cfg.CoalesceLoads {
		return c.loader(ctx, key)
	}

	// singleflight groups are keyed by string; %v is stable for comparable keys
	v, err, _ := c.sf.Do(fmt.Sprintf("%v", key), func() (any, error) {
		return c.loader(ctx, key)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
