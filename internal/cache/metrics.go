package cache

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Store()
	Evict()
	Size(stored, tracked int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                     {}
func (NoopMetrics) Miss()                    {}
func (NoopMetrics) Store()                   {}
func (NoopMetrics) Evict()                   {}
func (NoopMetrics) Size(stored, tracked int) {}

var _ Metrics = NoopMetrics{}
