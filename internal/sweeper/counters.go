package sweeper

import "sync/atomic"

type sweeperCounters struct {
	sweeps         atomic.Int64 // completed sweep cycles
	evictedEntries atomic.Int64 // stored entries removed by sweeps
	prunedKeys     atomic.Int64 // access-log-only keys removed by sweeps
}

func newSweeperCounters() *sweeperCounters {
	return &sweeperCounters{
		sweeps:         atomic.Int64{},
		evictedEntries: atomic.Int64{},
		prunedKeys:     atomic.Int64{},
	}
}

func (c *sweeperCounters) snapshot() (sweeps, evictedEntries, prunedKeys int64) {
	return c.sweeps.Load(), c.evictedEntries.Load(), c.prunedKeys.Load()
}
