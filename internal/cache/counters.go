package cache

import "sync/atomic"

type counters struct {
	hits       atomic.Int64
	misses     atomic.Int64
	loads      atomic.Int64
	loadErrors atomic.Int64
	stores     atomic.Int64
}

func newCounters() *counters {
	return &counters{
		hits:       atomic.Int64{},
		misses:     atomic.Int64{},
		loads:      atomic.Int64{},
		loadErrors: atomic.Int64{},
		stores:     atomic.Int64{},
	}
}

func (c *counters) snapshot() (hits, misses, loads, loadErrors, stores int64) {
	return c.hits.Load(), c.misses.Load(), c.loads.Load(), c.loadErrors.Load(), c.stores.Load()
}
