package sweeper

import "time"

// NoOpSweeper is a no-op implementation of Sweeper.
// It performs no sweeping and reports zero metrics.
type NoOpSweeper struct{}

// ForceCall does nothing and returns nil immediately.
func (NoOpSweeper) ForceCall(timeout time.Duration) error {
	return nil
}

// SweeperMetrics always returns zero values.
func (NoOpSweeper) SweeperMetrics() (sweeps, evictedEntries, prunedKeys int64) {
	return 0, 0, 0
}

// Close does nothing and returns nil.
func (NoOpSweeper) Close() error {
	return nil
}
