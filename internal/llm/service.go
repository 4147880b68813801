package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/schemalens/schemalens/internal/llm/content"
	"github.com/schemalens/schemalens/internal/llm/driver"
	"github.com/schemalens/schemalens/internal/llm/prompt"
	"github.com/schemalens/schemalens/internal/llm/ratelimit"
)

// Service coordinates prompt rendering, provider selection, and driver
// execution behind the shared rate limiter and retry policy.
type Service struct {
	Providers *Registry
	Prompts   *prompt.Registry

	// OnRetry observes every backoff across providers (for logging).
	OnRetry func(provider string, attempt int, wait time.Duration)

	limiterOnce sync.Once
	limiter     *ratelimit.Limiter
	limiterRPM  int
}

// NewService wires a service over the given configuration.
func NewService(cfg Config) (*Service, error) {
	prompts, err := prompt.NewRegistry(cfg.PromptsDir)
	if err != nil {
		return nil, err
	}

	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = ratelimit.DefaultRequestsPerMinute
	}

	return &Service{
		Providers:  NewRegistry(cfg),
		Prompts:    prompts,
		limiterRPM: rpm,
	}, nil
}

// DescribeRequest asks for YAML documentation of one SQL model.
type DescribeRequest struct {
	Prompt prompt.Data
	// ProviderOverride selects a provider other than the configured default.
	ProviderOverride string
}

// DescribeResult carries the raw YAML reply plus call metadata.
type DescribeResult struct {
	YAML     string
	Provider string
	Model    string
	Attempts int
	Usage    *driver.Usage
}

// Describe renders the prompt for one model and executes the provider call
// through the retry policy. Every attempt consumes a token from the shared
// process-wide limiter.
func (s *Service) Describe(ctx context.Context, req DescribeRequest) (*DescribeResult, error) {
	if s == nil || s.Providers == nil {
		return nil, errors.New("llm service not configured")
	}
	if strings.TrimSpace(req.Prompt.ModelName) == "" {
		return nil, errors.New("model name is required")
	}

	systemPrompt, userPrompt, err := s.Prompts.Render(req.Prompt)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Providers.Resolve(req.ProviderOverride)
	if err != nil {
		return nil, err
	}

	temperature := resolved.Temperature
	driverReq := &driver.Request{
		Model: resolved.Model,
		Messages: []content.Message{
			content.Text("system", systemPrompt),
			content.Text("user", userPrompt),
		},
		Temperature: &temperature,
	}

	attempts := 0
	retrier := ratelimit.NewRetrier(s.Limiter(), resolved.MaxRetries)
	retrier.OnRetry = func(attempt int, wait time.Duration) {
		if s.OnRetry != nil {
			s.OnRetry(resolved.ProviderID, attempt, wait)
		}
	}

	resp, err := ratelimit.Do(ctx, retrier, resolved.Classifier, func(ctx context.Context) (*driver.Response, error) {
		attempts++
		return resolved.Driver.Complete(ctx, driverReq)
	})
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", req.Prompt.ModelName, err)
	}

	return &DescribeResult{
		YAML:     resp.Text(),
		Provider: resolved.ProviderID,
		Model:    resolved.Model,
		Attempts: attempts,
		Usage:    resp.Usage,
	}, nil
}

// Limiter returns the shared token bucket, constructing it exactly once even
// under concurrent bootstrap.
func (s *Service) Limiter() *ratelimit.Limiter {
	s.limiterOnce.Do(func() {
		rpm := s.limiterRPM
		if rpm <= 0 {
			rpm = ratelimit.DefaultRequestsPerMinute
		}
		s.limiter = ratelimit.NewLimiter(rpm)
	})
	return s.limiter
}
