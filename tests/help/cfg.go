package help

import (
	"time"

	"github.com/mozilla-services/go-readthrough-cache/config"
)

func Cfg() *config.Cache {
	c := &config.Cache{
		TTL: time.Hour * 2,
		Telemetry: &config.TelemetryCfg{
			Interval: time.Second * 5,
		},
	}
	c.AdjustConfig()
	return c
}

func SweepCfg(ttl, interval time.Duration) *config.Cache {
	c := Cfg()
	c.TTL = ttl
	c.Sweep = &config.SweepCfg{
		Interval: interval,
	}
	c.Telemetry = nil
	c.AdjustConfig()
	return c
}

func CoalesceCfg() *config.Cache {
	c := Cfg()
	c.CoalesceLoads = true
	c.Telemetry = nil
	return c
}

func PersistenceCfg(dir string, ttl time.Duration) *config.Cache {
	c := Cfg()
	c.TTL = ttl
	c.Telemetry = nil
	c.Persistence = &config.PersistenceCfg{
		Dir:          dir,
		KeepVersions: 3,
	}
	c.AdjustConfig()
	return c
}
