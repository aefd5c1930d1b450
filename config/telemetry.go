package config

import "time"

type TelemetryCfg struct {
	// Interval defines how often cache stats are written to the logger.
	// If zero, a 5s default is applied during initialization.
	Interval time.Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil
}
