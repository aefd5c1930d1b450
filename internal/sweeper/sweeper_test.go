package sweeper

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-services/go-readthrough-cache/config"
)

type countingPurger struct {
	calls atomic.Int64
}

func (p *countingPurger) PurgeExpired() (evicted, pruned int64) {
	p.calls.Add(1)
	return 2, 3
}

// TestSweepWorker_TickerSweeps purges on its own schedule.
func TestSweepWorker_TickerSweeps(t *testing.T) {
	p := &countingPurger{}
	sw := New(t.Context(), &config.SweepCfg{Interval: 20 * time.Millisecond}, slog.Default(), p)
	defer sw.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	checkEach := time.NewTicker(10 * time.Millisecond)
	defer checkEach.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("context deadline exceeded; test failed")
		case <-checkEach.C:
			if p.calls.Load() >= 2 {
				sweeps, evicted, pruned := sw.SweeperMetrics()
				require.GreaterOrEqual(t, sweeps, int64(1))
				require.GreaterOrEqual(t, evicted, int64(2))
				require.GreaterOrEqual(t, pruned, int64(3))
				return
			}
		}
	}
}

// TestSweepWorker_ForceCall triggers an out-of-schedule sweep.
func TestSweepWorker_ForceCall(t *testing.T) {
	p := &countingPurger{}
	sw := New(t.Context(), &config.SweepCfg{Interval: time.Hour}, slog.Default(), p)
	defer sw.Close()

	require.NoError(t, sw.ForceCall(time.Second))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	checkEach := time.NewTicker(5 * time.Millisecond)
	defer checkEach.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("context deadline exceeded; test failed")
		case <-checkEach.C:
			if p.calls.Load() >= 1 {
				return
			}
		}
	}
}

// TestSweepWorker_CloseStops: a closed worker no longer accepts force calls.
func TestSweepWorker_CloseStops(t *testing.T) {
	p := &countingPurger{}
	sw := New(t.Context(), &config.SweepCfg{Interval: time.Hour}, slog.Default(), p)

	require.NoError(t, sw.Close())
	// idempotent
	require.NoError(t, sw.Close())

	// the cancelled context path returns nil without invoking the purger
	require.NoError(t, sw.ForceCall(10*time.Millisecond))
}

// TestNew_DisabledConfig yields a NoOpSweeper.
func TestNew_DisabledConfig(t *testing.T) {
	sw := New(t.Context(), nil, slog.Default(), &countingPurger{})

	_, ok := sw.(*NoOpSweeper)
	require.True(t, ok)
}
