package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/llm"
)

func TestLoadDefaults(t *testing.T) {
	cfg := loadInTempDir(t)

	require.Equal(t, llm.ProviderOpenAI, cfg.LLM.DefaultProvider)
	require.Equal(t, 10, cfg.LLM.RequestsPerMin)
	require.Equal(t, 60*time.Second, cfg.LLM.DefaultTimeout)
	require.Equal(t, DefaultWorkers, cfg.Workers)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, "info", cfg.Logging.Level)

	require.Equal(t, "gpt-4o-mini", cfg.LLM.Providers[llm.ProviderOpenAI].Model)
	require.Equal(t, "claude-3-opus-20240229", cfg.LLM.Providers[llm.ProviderAnthropic].Model)
	require.Equal(t, "gemini-1.5-flash", cfg.LLM.Providers[llm.ProviderGemini].Model)
	require.Equal(t, 3, cfg.LLM.Providers[llm.ProviderOpenAI].MaxRetries)
	require.Equal(t, 1, cfg.LLM.Providers[llm.ProviderGemini].MaxRetries)
	require.InDelta(t, 0.3, cfg.LLM.Providers[llm.ProviderAnthropic].Temperature, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("GLOBAL_MAX_RPM", "25")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022")
	t.Setenv("ANTHROPIC_TEMPERATURE", "0.7")
	t.Setenv("ANTHROPIC_MAX_RETRIES", "5")
	t.Setenv("SCHEMALENS_WORKERS", "8")
	t.Setenv("SCHEMALENS_CACHE_TTL", "1h30m")
	t.Setenv("SCHEMALENS_LOG_LEVEL", "debug")

	cfg := loadInTempDir(t)

	require.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	require.Equal(t, 25, cfg.LLM.RequestsPerMin)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "debug", cfg.Logging.Level)

	anthropic := cfg.LLM.Providers[llm.ProviderAnthropic]
	require.Equal(t, "sk-test", anthropic.APIKey)
	require.Equal(t, "claude-3-5-sonnet-20241022", anthropic.Model)
	require.InDelta(t, 0.7, anthropic.Temperature, 1e-9)
	require.Equal(t, 5, anthropic.MaxRetries)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "workers: 2\nllm:\n  provider: gemini\nstore:\n  path: /tmp/custom.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemalens.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, "gemini", cfg.LLM.DefaultProvider)
	require.Equal(t, "/tmp/custom.db", cfg.Store.Path)
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemalens.yaml"), []byte("workers: 2\n"), 0o644))
	t.Setenv("SCHEMALENS_WORKERS", "16")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Workers)
}

// loadInTempDir runs Load from an empty directory so a schemalens.yaml in
// the repository cannot leak into the test.
func loadInTempDir(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	return cfg
}
