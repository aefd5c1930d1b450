package telemetry

type cacheSource interface {
	CacheMetrics() (hits, misses, loads, loadErrors, stores int64)
	Len() int64
	TrackedLen() int64
}

type sweepSource interface {
	SweeperMetrics() (sweeps, evictedEntries, prunedKeys int64)
}

type sampler struct {
	cache   cacheSource
	sweeper sweepSource
}

func newSampler(c cacheSource, sw sweepSource) sampler {
	return sampler{cache: c, sweeper: sw}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hits       uint64
	misses     uint64
	loads      uint64
	loadErrors uint64
	stores     uint64

	sweeps         uint64
	evictedEntries uint64
	prunedKeys     uint64
}

func (s sampler) snapshot() snapshot {
	hits, misses, loads, loadErrors, stores := s.cache.CacheMetrics()
	sweeps, evicted, pruned := s.sweeper.SweeperMetrics()

	return snapshot{
		hits:       uint64(max(hits, 0)),
		misses:     uint64(max(misses, 0)),
		loads:      uint64(max(loads, 0)),
		loadErrors: uint64(max(loadErrors, 0)),
		stores:     uint64(max(stores, 0)),

		sweeps:         uint64(max(sweeps, 0)),
		evictedEntries: uint64(max(evicted, 0)),
		prunedKeys:     uint64(max(pruned, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:       delta(prev.hits, cur.hits),
		misses:     delta(prev.misses, cur.misses),
		loads:      delta(prev.loads, cur.loads),
		loadErrors: delta(prev.loadErrors, cur.loadErrors),
		stores:     delta(prev.stores, cur.stores),

		sweeps:         delta(prev.sweeps, cur.sweeps),
		evictedEntries: delta(prev.evictedEntries, cur.evictedEntries),
		prunedKeys:     delta(prev.prunedKeys, cur.prunedKeys),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
