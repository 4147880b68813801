package config

import (
	"time"

	"github.com/schemalens/schemalens/internal/llm"
)

// Config is the complete application configuration. Values are resolved in
// three layers: built-in defaults, an optional schemalens.yaml file, and
// environment variables (LLM_PROVIDER, GLOBAL_MAX_RPM, provider keys, and
// SCHEMALENS_* settings).
type Config struct {
	LLM     llm.Config    `mapstructure:"llm"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`

	// Workers bounds the generation worker pool.
	Workers int `mapstructure:"workers"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig controls the generated-response cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
}
