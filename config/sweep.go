package config

import "time"

type SweepCfg struct {
	// Interval defines how often the sweep worker wakes up and purges idle
	// entries. If zero, it is derived from Cache.TTL during initialization,
	// which bounds worst-case residency of an idle entry by 2×TTL.
	// Example: "30m".
	Interval time.Duration `yaml:"interval"`
}

func (cfg *SweepCfg) Enabled() bool {
	return cfg != nil
}
