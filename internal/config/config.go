// Package config loads and validates the server's configuration, layering
// a config file, environment variables, and defaults the same way the
// teacher's pkg/config does.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (XROOTD4G_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GSI     GSIConfig     `mapstructure:"gsi"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the data-server core.
type ServerConfig struct {
	// Root is the filesystem root every client path is resolved under.
	Root string `mapstructure:"root" validate:"required"`

	// Port is the TCP port the accept loop listens on.
	Port int `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// MaxFrameSize bounds a single read/readv response frame's payload.
	MaxFrameSize int `mapstructure:"max_frame_size" validate:"required,gt=0"`

	// MaxBodySize bounds a single request's dlen, guarding the frame codec.
	MaxBodySize int `mapstructure:"max_body_size" validate:"required,gt=0"`

	// UseZeroCopy enables the transport-capability zero-copy read path.
	UseZeroCopy bool `mapstructure:"use_zero_copy"`

	// IdleTimeout closes a connection that has been idle this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"required,gt=0"`

	// MaxConnRate caps how many new connections per second the accept
	// loop admits. 0 disables the limit.
	MaxConnRate uint `mapstructure:"max_conn_rate"`

	// MaxConnBurst caps the number of connections accepted in a burst
	// above the sustained MaxConnRate. Defaults to 2x MaxConnRate.
	MaxConnBurst uint `mapstructure:"max_conn_burst"`
}

// GSIConfig controls the GSI/DH authentication collaborators.
type GSIConfig struct {
	// TrustAnchorRefresh is a trust-anchor refresh period, validated and
	// defaulted here. No component in this module reads it:
	// trustcache.New takes its period as an argument and is not started
	// by cmd/xrootd4g.
	TrustAnchorRefresh time.Duration `mapstructure:"trust_anchor_refresh" validate:"required,gt=0"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("XROOTD4G")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "xrootd4g")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "xrootd4g")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
