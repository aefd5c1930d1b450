package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultTelemetryInterval = 5 * time.Second

func (cfg *Cache) AdjustConfig() {
	if cfg.Sweep.Enabled() && cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = cfg.TTL
	}

	if cfg.Telemetry.Enabled() && cfg.Telemetry.Interval <= 0 {
		cfg.Telemetry.Interval = defaultTelemetryInterval
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("config %s: ttl must be positive", path)
	}
	cfg.AdjustConfig()

	return &cfg, nil
}
