package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/core"
	"github.com/schemalens/schemalens/internal/core/engine"
	"github.com/schemalens/schemalens/internal/core/store"
	"github.com/schemalens/schemalens/internal/llm"
	"github.com/schemalens/schemalens/internal/observability"
	"github.com/schemalens/schemalens/internal/output"
)

var generateCmd = &cobra.Command{
	Use:   "generate [project_path]",
	Short: "Generate schema.yml files for dbt models",
	Long: `Scan models/**/*.sql under the project path (default "."), ask the
configured LLM provider to document each model, and write one schema.yml per
model directory. Existing entries for models outside the run are preserved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceP("select", "s", nil, "only process the named models (by file stem)")
	generateCmd.Flags().String("provider", "", "provider override: openai, anthropic, gemini")
	generateCmd.Flags().Bool("dry-run", false, "list the models that would be processed without calling the provider")
	generateCmd.Flags().Bool("strip-tests", false, "remove all generated tests from the output")
	generateCmd.Flags().Bool("no-cache", false, "bypass the response cache for this run")
	generateCmd.Flags().Int("workers", 0, "worker pool size (default from config)")
	generateCmd.Flags().StringP("format", "f", "table", "output format: table, json, markdown")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	project := "."
	if len(args) == 1 {
		project = args[0]
	}

	selectedModels, _ := cmd.Flags().GetStringSlice("select")
	providerOverride, _ := cmd.Flags().GetString("provider")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	stripTests, _ := cmd.Flags().GetBool("strip-tests")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	workers, _ := cmd.Flags().GetInt("workers")
	formatValue, _ := cmd.Flags().GetString("format")

	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	cfg := loadedConfig()
	ctx := cmd.Context()

	service, err := llm.NewService(cfg.LLM)
	if err != nil {
		return fmt.Errorf("building llm service: %w", err)
	}
	service.OnRetry = func(provider string, attempt int, wait time.Duration) {
		observability.CLILogger.Warn("Rate limited, backing off",
			zap.String("provider", provider),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait))
	}

	// Resolve up front so a missing API key fails before any file work.
	resolved, err := service.Providers.Resolve(providerOverride)
	if err != nil && !dryRun {
		return err
	}

	gen := &engine.Generator{
		Describer:        service,
		CacheTTL:         cfg.Cache.TTL,
		Workers:          workers,
		DryRun:           dryRun,
		StripTests:       stripTests,
		ProviderOverride: providerOverride,
	}
	if gen.Workers <= 0 {
		gen.Workers = cfg.Workers
	}
	if resolved != nil {
		gen.Provider = resolved.ProviderID
		gen.ProviderModel = resolved.Model
	} else {
		gen.Provider = fallbackProvider(providerOverride, cfg.LLM.DefaultProvider)
	}

	if cfg.Cache.Enabled && !noCache && !dryRun {
		if cache := openCache(ctx, cfg); cache != nil {
			defer cache.Close() // nolint:errcheck // best-effort cleanup
			gen.Cache = cache
		}
	}

	run, runErr := gen.Run(ctx, project, selectedSet(selectedModels))
	if run != nil {
		rendered, err := output.NewFormatter(format).FormatRun(run)
		if err != nil {
			return err
		}
		if strings.TrimSpace(rendered) != "" {
			fmt.Println(rendered)
		}

		if failed := run.Count(core.StatusFailed); failed > 0 {
			observability.CLILogger.Warn("Some models failed; rerun with --select to retry them",
				zap.Int("failed", failed))
		}
	}
	return runErr
}

// openCache opens and migrates the response cache, degrading to no cache on
// failure rather than aborting the run.
func openCache(ctx context.Context, cfg *config.Config) *store.Store {
	cache, err := store.Open(ctx, cfg.Store)
	if err != nil {
		observability.CLILogger.Warn("Response cache unavailable, continuing without it", zap.Error(err))
		return nil
	}
	if err := cache.Migrate(ctx); err != nil {
		observability.CLILogger.Warn("Response cache migration failed, continuing without it", zap.Error(err))
		_ = cache.Close()
		return nil
	}
	return cache
}

// fallbackProvider names the provider for reporting when resolution failed,
// which dry runs tolerate (for example, a missing API key).
func fallbackProvider(override, configured string) string {
	if override != "" {
		return override
	}
	return configured
}

// selectedSet turns --select values into a lookup set of model stems.
// Entries may name files ("fct_orders.sql") or stems ("fct_orders").
func selectedSet(models []string) map[string]struct{} {
	if len(models) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(models))
	for _, m := range models {
		stem := strings.TrimSuffix(strings.TrimSpace(m), ".sql")
		if stem != "" {
			set[stem] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// loadedConfig returns the config resolved during initialization, loading it
// directly when a command runs outside the cobra lifecycle (tests).
func loadedConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	cfg, err := config.Load("")
	if err != nil {
		exitConfigError("Failed to load configuration", err)
	}
	appConfig = cfg
	return cfg
}
