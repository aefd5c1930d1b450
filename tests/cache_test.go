package tests

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	readthrough "github.com/mozilla-services/go-readthrough-cache"
	"github.com/mozilla-services/go-readthrough-cache/internal/shared/clock"
	"github.com/mozilla-services/go-readthrough-cache/tests/help"
)

func manualClock() *clock.Manual {
	return clock.NewManual(time.Date(2019, 4, 1, 10, 0, 0, 0, time.UTC))
}

func payloadLoader(invokes *atomic.Int64) readthrough.Loader[string, string] {
	return func(ctx context.Context, key string) (string, error) {
		if invokes != nil {
			invokes.Add(1)
		}
		return "payload", nil
	}
}

func TestCacheDoesntStoreUnlessAccessedWithinTTL(t *testing.T) {
	clk := manualClock()
	cfg := help.Cfg()
	cfg.TTL = time.Hour * 4
	cache := readthrough.NewWithOptions(t.Context(), cfg, help.Logger(), payloadLoader(nil),
		readthrough.Options[string, string]{Clock: clk})
	defer cache.Close()

	_, err := cache.Get(t.Context(), "key_a")
	require.NoError(t, err)

	// after one hour
	clk.Advance(time.Hour)
	require.False(t, cache.Contains("key_a"))

	// after two hours: second access within TTL
	clk.Advance(time.Hour)
	_, err = cache.Get(t.Context(), "key_a")
	require.NoError(t, err)

	// after three hours
	clk.Advance(time.Hour)
	require.True(t, cache.Contains("key_a"))
}

func TestCachePurgesAfterTTL(t *testing.T) {
	clk := manualClock()
	cache := readthrough.NewWithOptions(t.Context(), help.Cfg(), help.Logger(), payloadLoader(nil),
		readthrough.Options[string, string]{Clock: clk})
	defer cache.Close()

	_, err := cache.Get(t.Context(), "key_a", readthrough.ForceStore())
	require.NoError(t, err)

	// after one hour
	clk.Advance(time.Hour)
	cache.PurgeExpired()
	require.True(t, cache.Contains("key_a"))

	// after two hours one minute
	clk.Advance(time.Hour + time.Minute)
	cache.PurgeExpired()
	require.False(t, cache.Contains("key_a"))
}

func TestCacheTTLRefreshesAfterGet(t *testing.T) {
	clk := manualClock()
	cache := readthrough.NewWithOptions(t.Context(), help.Cfg(), help.Logger(), payloadLoader(nil),
		readthrough.Options[string, string]{Clock: clk})
	defer cache.Close()

	_, err := cache.Get(t.Context(), "key_a", readthrough.ForceStore())
	require.NoError(t, err)

	// after one hour
	clk.Advance(time.Hour)
	cache.PurgeExpired()
	require.True(t, cache.Contains("key_a"))
	payload, err := cache.Get(t.Context(), "key_a")
	require.NoError(t, err)
	require.Equal(t, "payload", payload)

	// after three hours: only two since last access
	clk.Advance(time.Hour * 2)
	cache.PurgeExpired()
	require.True(t, cache.Contains("key_a"))

	// after three hours one minute
	clk.Advance(time.Minute)
	cache.PurgeExpired()
	require.False(t, cache.Contains("key_a"))
}

func TestCacheForceStoreOnFirstAccess(t *testing.T) {
	clk := manualClock()
	cache := readthrough.NewWithOptions(t.Context(), help.Cfg(), help.Logger(), payloadLoader(nil),
		readthrough.Options[string, string]{Clock: clk})
	defer cache.Close()

	require.False(t, cache.Contains("key_a"))

	_, err := cache.Get(t.Context(), "key_a", readthrough.ForceStore())
	require.NoError(t, err)
	require.True(t, cache.Contains("key_a"))
}

func TestCacheServesStoredValueWithoutLoader(t *testing.T) {
	var invokes atomic.Int64
	cache := readthrough.New(t.Context(), help.Cfg(), help.Logger(), payloadLoader(&invokes))
	defer cache.Close()

	var payload string
	var err error
	for i := 0; i < 1000; i++ {
		payload, err = cache.Get(t.Context(), "hello_world", readthrough.ForceStore())
		require.NoError(t, err)
	}

	require.Equal(t, "payload", payload)
	require.Equal(t, int64(1), invokes.Load())
}

func TestCacheKeyRespected(t *testing.T) {
	var invokes atomic.Int64
	cache := readthrough.New(t.Context(), help.Cfg(), help.Logger(),
		func(ctx context.Context, key string) (string, error) {
			invokes.Add(1)
			return "payload: " + key, nil
		})
	defer cache.Close()

	var payload string
	var err error
	for i := 0; i < 1000; i++ {
		payload, err = cache.Get(t.Context(), fmt.Sprintf("hello_world_%d", i), readthrough.ForceStore())
		require.NoError(t, err)
	}

	require.Equal(t, "payload: hello_world_999", payload)
	require.Equal(t, int64(1000), invokes.Load())
}

func TestCacheErrPropagates(t *testing.T) {
	var invokes atomic.Int64
	cache := readthrough.New(t.Context(), help.Cfg(), help.Logger(),
		func(ctx context.Context, key string) (string, error) {
			invokes.Add(1)
			return "", fmt.Errorf("load failed for %s", key)
		})
	defer cache.Close()

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("hello_world_%d", i)
		_, err := cache.Get(t.Context(), key)
		require.Errorf(t, err, "load failed for %s", key)
		require.False(t, cache.Contains(key))
	}

	require.Equal(t, int64(100), invokes.Load())
	require.Equal(t, int64(0), cache.TrackedLen())
}

func TestCacheWarmPreloadsModels(t *testing.T) {
	var invokes atomic.Int64
	cache := readthrough.New(t.Context(), help.Cfg(), help.Logger(), payloadLoader(&invokes))
	defer cache.Close()

	require.NoError(t, cache.Warm(t.Context(), "defectmodel", "regressionmodel", "testselectmodel"))
	require.Equal(t, int64(3), invokes.Load())
	require.Equal(t, int64(3), cache.Len())

	// warmed keys are served from storage
	_, err := cache.Get(t.Context(), "defectmodel")
	require.NoError(t, err)
	require.Equal(t, int64(3), invokes.Load())
}

func TestCacheCoalescedLoadsSingleInvoke(t *testing.T) {
	var invokes atomic.Int64
	release := make(chan struct{})
	cache := readthrough.New(t.Context(), help.CoalesceCfg(), help.Logger(),
		func(ctx context.Context, key string) (string, error) {
			invokes.Add(1)
			<-release
			return "payload", nil
		})
	defer cache.Close()

	const callers = 16
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := cache.Get(context.Background(), "key_a")
			errCh <- err
		}()
	}

	// give every caller time to join the flight
	time.Sleep(100 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		require.NoError(t, <-errCh)
	}
	require.Equal(t, int64(1), invokes.Load())
}

func TestCacheMetricsCounters(t *testing.T) {
	clk := manualClock()
	cache := readthrough.NewWithOptions(t.Context(), help.Cfg(), help.Logger(), payloadLoader(nil),
		readthrough.Options[string, string]{Clock: clk})
	defer cache.Close()

	_, err := cache.Get(t.Context(), "key_a", readthrough.ForceStore())
	require.NoError(t, err)
	_, err = cache.Get(t.Context(), "key_a")
	require.NoError(t, err)
	_, err = cache.Get(t.Context(), "one_off")
	require.NoError(t, err)

	hits, misses, loads, loadErrors, stores := cache.CacheMetrics()
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(2), misses)
	require.Equal(t, int64(2), loads)
	require.Equal(t, int64(0), loadErrors)
	require.Equal(t, int64(1), stores)
}
