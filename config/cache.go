package config

import "time"

// Cache groups configuration of all cache subsystems.
// Each background component can be configured independently or disabled by setting it to nil.
type Cache struct {
	// TTL is the maximum idle time of an entry: an entry whose last access is
	// older than TTL is removed by the next sweep. The expiry clock resets on
	// every access, not only on insertion.
	// Example: "6h".
	TTL time.Duration `yaml:"ttl"`

	// CoalesceLoads collapses concurrent loads for the same key into a single
	// loader invocation. When disabled (the default), concurrent misses on the
	// same key may each invoke the loader; the last result wins.
	CoalesceLoads bool `yaml:"coalesce_loads"`

	// Sweep configures the background purge worker that removes idle entries.
	// If nil, no worker is started and expired entries are only removed by
	// explicit PurgeExpired calls.
	Sweep *SweepCfg `yaml:"sweep"`

	// Telemetry configures periodic stat logging.
	// If nil, telemetry logs are disabled.
	Telemetry *TelemetryCfg `yaml:"telemetry"`

	// Persistence configures snapshot dumps of retained entries to disk.
	// If nil, persistence is disabled.
	Persistence *PersistenceCfg `yaml:"persistence"`
}
