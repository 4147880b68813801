// Package config provides centralized configuration management for
// schemalens. Defaults, an optional schemalens.yaml file, and environment
// variables are merged through viper and decoded into the typed Config.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/schemalens/schemalens/internal/llm"
	"github.com/schemalens/schemalens/internal/llm/ratelimit"
)

const (
	// DefaultWorkers bounds the generation worker pool when unset.
	DefaultWorkers = 4

	// DefaultCacheTTL is how long generated schema entries stay reusable.
	DefaultCacheTTL = "24h"

	configName = "schemalens"
)

// envBindings maps config keys to the environment variables that override
// them. Provider-specific variables are bound separately per provider id.
var envBindings = map[string]string{
	"llm.provider":            "LLM_PROVIDER",
	"llm.requests_per_minute": "GLOBAL_MAX_RPM",
	"llm.default_timeout":     "SCHEMALENS_LLM_TIMEOUT",
	"llm.prompts_dir":         "SCHEMALENS_PROMPTS_DIR",
	"workers":                 "SCHEMALENS_WORKERS",
	"cache.enabled":           "SCHEMALENS_CACHE_ENABLED",
	"cache.ttl":               "SCHEMALENS_CACHE_TTL",
	"store.driver":            "SCHEMALENS_DB_DRIVER",
	"store.path":              "SCHEMALENS_DB_PATH",
	"store.url":               "SCHEMALENS_DB_URL",
	"store.auth_token":        "SCHEMALENS_DB_AUTH_TOKEN",
	"logging.level":           "SCHEMALENS_LOG_LEVEL",
}

// providerDefaults carries the per-vendor baseline applied before any file
// or environment override.
var providerDefaults = map[string]map[string]any{
	llm.ProviderOpenAI: {
		"model":       "gpt-4o-mini",
		"temperature": 0.3,
		"max_retries": 3,
	},
	llm.ProviderAnthropic: {
		"model":       "claude-3-opus-20240229",
		"temperature": 0.3,
		"max_retries": 3,
	},
	llm.ProviderGemini: {
		"model":       "gemini-1.5-flash",
		"temperature": 0.3,
		"max_retries": 1,
	},
}

// Load resolves the application configuration. searchPath, when non-empty,
// is an extra directory checked for schemalens.yaml; a missing config file
// is not an error.
func Load(searchPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if searchPath != "" {
		v.AddConfigPath(searchPath)
	}

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", llm.ProviderOpenAI)
	v.SetDefault("llm.requests_per_minute", ratelimit.DefaultRequestsPerMinute)
	v.SetDefault("llm.default_timeout", "60s")

	for id, defaults := range providerDefaults {
		for key, value := range defaults {
			v.SetDefault("llm.providers."+id+"."+key, value)
		}
	}

	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("logging.level", "info")
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	for _, id := range []string{llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini} {
		prefix := strings.ToUpper(id) + "_"
		for key, env := range map[string]string{
			"api_key":     prefix + "API_KEY",
			"model":       prefix + "MODEL",
			"temperature": prefix + "TEMPERATURE",
			"max_retries": prefix + "MAX_RETRIES",
			"base_url":    prefix + "BASE_URL",
		} {
			if err := v.BindEnv("llm.providers."+id+"."+key, env); err != nil {
				return fmt.Errorf("bind %s: %w", env, err)
			}
		}
	}
	return nil
}

// DefaultStorePath is where the response cache database lives when no
// explicit store path or URL is configured.
func DefaultStorePath() string {
	return filepath.Join(".schemalens", "cache.db")
}
