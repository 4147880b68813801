package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/schemalens/schemalens/internal/llm/driver"
	"github.com/schemalens/schemalens/internal/llm/driver/anthropic"
	"github.com/schemalens/schemalens/internal/llm/driver/gemini"
	"github.com/schemalens/schemalens/internal/llm/driver/openai"
	"github.com/schemalens/schemalens/internal/llm/ratelimit"
)

// Registry constructs and caches provider drivers from configuration.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// ResolvedProvider is a ready-to-call provider: the driver, its error
// classifier, and the effective request parameters.
type ResolvedProvider struct {
	ProviderID  string
	Driver      driver.Driver
	Classifier  ratelimit.Classifier
	Model       string
	Temperature float64
	MaxRetries  int
}

// NewRegistry returns a registry over the given configuration.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve returns the provider selected by override, falling back to the
// configured default. Driver instances are cached per provider id.
func (r *Registry) Resolve(override string) (*ResolvedProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("provider registry not configured")
	}

	providerID := strings.ToLower(strings.TrimSpace(override))
	if providerID == "" {
		providerID = strings.ToLower(strings.TrimSpace(r.cfg.DefaultProvider))
	}
	if providerID == "" {
		providerID = ProviderOpenAI
	}

	providerCfg, ok := r.cfg.Providers[providerID]
	if !ok {
		return nil, fmt.Errorf("no provider named %q; check LLM_PROVIDER", providerID)
	}
	if strings.TrimSpace(providerCfg.APIKey) == "" {
		return nil, fmt.Errorf("provider %q has no API key configured", providerID)
	}
	if strings.TrimSpace(providerCfg.Model) == "" {
		return nil, fmt.Errorf("provider %q has no model configured", providerID)
	}

	drv, classifier, err := r.driverFor(providerID, providerCfg)
	if err != nil {
		return nil, err
	}

	return &ResolvedProvider{
		ProviderID:  providerID,
		Driver:      drv,
		Classifier:  classifier,
		Model:       providerCfg.Model,
		Temperature: providerCfg.Temperature,
		MaxRetries:  providerCfg.MaxRetries,
	}, nil
}

func (r *Registry) driverFor(providerID string, cfg ProviderConfig) (driver.Driver, ratelimit.Classifier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drivers == nil {
		r.drivers = map[string]driver.Driver{}
	}

	if drv, ok := r.drivers[providerID]; ok {
		return drv, driver.RateLimitClassifier{}, nil
	}

	var drv driver.Driver
	switch providerID {
	case ProviderOpenAI:
		client := openai.NewClient(cfg.BaseURL, cfg.APIKey)
		client.Timeout = r.cfg.DefaultTimeout
		drv = client
	case ProviderAnthropic:
		client := anthropic.NewClient(cfg.BaseURL, cfg.APIKey)
		client.Timeout = r.cfg.DefaultTimeout
		drv = client
	case ProviderGemini:
		client := gemini.NewClient(cfg.BaseURL, cfg.APIKey)
		client.Timeout = r.cfg.DefaultTimeout
		drv = client
	default:
		return nil, nil, fmt.Errorf("unsupported provider %q", providerID)
	}

	r.drivers[providerID] = drv
	return drv, driver.RateLimitClassifier{}, nil
}
