package config

// PersistenceCfg configures snapshot dumps of retained entries.
// Snapshots let a restarted process serve previously cached values without
// paying the loader cost again for every key.
type PersistenceCfg struct {
	// Dir is the base directory for snapshots. Each dump is written into a
	// fresh versioned subdirectory (v1, v2, ...); Load reads the latest one.
	Dir string `yaml:"dir"`

	// KeepVersions bounds how many snapshot versions are retained on disk.
	// Older versions are removed after a successful dump. Zero keeps all.
	KeepVersions int `yaml:"keep_versions"`
}

func (cfg *PersistenceCfg) Enabled() bool {
	return cfg != nil && cfg.Dir != ""
}
