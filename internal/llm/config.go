package llm

import "time"

// Provider identifiers accepted in LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config defines provider configuration for the LLM layer.
//
// Values come from environment variables (LLM_PROVIDER, GLOBAL_MAX_RPM,
// OPENAI_API_KEY, ...) bound through viper; see internal/config.
type Config struct {
	// DefaultProvider selects the active provider when no override is given.
	DefaultProvider string        `mapstructure:"provider"`
	RequestsPerMin  int           `mapstructure:"requests_per_minute"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`

	// PromptsDir allows overriding the built-in prompt templates.
	PromptsDir string `mapstructure:"prompts_dir"`

	// Providers is keyed by provider id ("openai", "anthropic", "gemini").
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig is the per-vendor configuration consumed by the adapters.
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	BaseURL     string  `mapstructure:"base_url"`

	// MaxRetries is the extra-attempt budget for recoverable rate-limit
	// errors; providers ship different defaults.
	MaxRetries int `mapstructure:"max_retries"`
}
