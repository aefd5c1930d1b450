package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	readthrough "github.com/mozilla-services/go-readthrough-cache"
)

// Adapter implements readthrough.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	stores      prometheus.Counter
	evicts      prometheus.Counter
	sizeStored  prometheus.Gauge
	sizeTracked prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		stores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "stores_total",
			Help:        "Loaded values retained in storage",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Stored entries removed by idle expiry",
			ConstLabels: constLabels,
		}),
		sizeStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_stored_entries",
			Help:        "Number of retained entries",
			ConstLabels: constLabels,
		}),
		sizeTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_tracked_keys",
			Help:        "Number of keys with a recency record",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.stores, a.evicts, a.sizeStored, a.sizeTracked)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Store increments the store counter.
func (a *Adapter) Store() { a.stores.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Size updates gauges for retained entries and tracked keys.
func (a *Adapter) Size(stored, tracked int) {
	a.sizeStored.Set(float64(stored))
	a.sizeTracked.Set(float64(tracked))
}

// Compile-time check: ensure Adapter implements readthrough.Metrics.
var _ readthrough.Metrics = (*Adapter)(nil)
