package config

import "time"

const (
	defaultPort               = 1094
	defaultMaxFrameSize       = 2 << 20 // 2 MiB
	defaultMaxBodySize        = 4 << 20 // 4 MiB
	defaultIdleTimeout        = 5 * time.Minute
	defaultTrustAnchorRefresh = 10 * time.Minute
	defaultLogLevel           = "INFO"
	defaultLogOutput          = "stderr"
)

// ApplyDefaults fills in zero-valued fields with their defaults. Called
// after unmarshaling so an absent config file or a partial one still
// produces a runnable configuration.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.MaxFrameSize == 0 {
		cfg.Server.MaxFrameSize = defaultMaxFrameSize
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = defaultMaxBodySize
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.MaxConnRate > 0 && cfg.Server.MaxConnBurst == 0 {
		cfg.Server.MaxConnBurst = cfg.Server.MaxConnRate * 2
	}
	if cfg.GSI.TrustAnchorRefresh == 0 {
		cfg.GSI.TrustAnchorRefresh = defaultTrustAnchorRefresh
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = defaultLogOutput
	}
}
