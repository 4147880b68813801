package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemalens/schemalens/internal/core/store"
	"github.com/schemalens/schemalens/internal/llm"
	"github.com/schemalens/schemalens/internal/llm/prompt"
	"github.com/schemalens/schemalens/internal/observability"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Check provider configuration, prompt templates, and the response cache, and suggest fixes for common issues.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadedConfig()
		log := observability.CLILogger

		log.Info("=== schemalens doctor ===")
		log.Info("")

		allChecks := true
		totalChecks := 5

		// Check 1: Go runtime
		goVersion := runtime.Version()
		log.Info(fmt.Sprintf("[1/%d] Checking Go version... ✅ %s", totalChecks, goVersion), zap.String("go_version", goVersion))

		// Check 2: active provider
		registry := llm.NewRegistry(cfg.LLM)
		resolved, err := registry.Resolve("")
		if err != nil {
			log.Error(fmt.Sprintf("[2/%d] Checking provider... ❌ %v", totalChecks, err))
			log.Info("      Set LLM_PROVIDER and the matching *_API_KEY environment variable")
			allChecks = false
		} else {
			log.Info(fmt.Sprintf("[2/%d] Checking provider... ✅ %s (%s)", totalChecks, resolved.ProviderID, resolved.Model),
				zap.String("provider", resolved.ProviderID), zap.String("model", resolved.Model))
		}

		// Check 3: rate limit configuration
		rpm := cfg.LLM.RequestsPerMin
		if rpm <= 0 {
			log.Warn(fmt.Sprintf("[3/%d] Checking rate limit... ⚠️  GLOBAL_MAX_RPM unset, using default", totalChecks))
		} else {
			log.Info(fmt.Sprintf("[3/%d] Checking rate limit... ✅ %d requests/minute", totalChecks, rpm), zap.Int("rpm", rpm))
		}

		// Check 4: prompt templates
		if _, err := prompt.NewRegistry(cfg.LLM.PromptsDir); err != nil {
			log.Error(fmt.Sprintf("[4/%d] Checking prompt templates... ❌ %v", totalChecks, err))
			allChecks = false
		} else if cfg.LLM.PromptsDir != "" {
			log.Info(fmt.Sprintf("[4/%d] Checking prompt templates... ✅ overrides from %s", totalChecks, cfg.LLM.PromptsDir))
		} else {
			log.Info(fmt.Sprintf("[4/%d] Checking prompt templates... ✅ built-in defaults", totalChecks))
		}

		// Check 5: response cache
		if !cfg.Cache.Enabled {
			log.Info(fmt.Sprintf("[5/%d] Checking response cache... ✅ disabled by configuration", totalChecks))
		} else if cache, err := store.Open(ctx, cfg.Store); err != nil {
			log.Warn(fmt.Sprintf("[5/%d] Checking response cache... ⚠️  %v (runs will skip caching)", totalChecks, err))
		} else {
			if err := cache.Migrate(ctx); err != nil {
				log.Warn(fmt.Sprintf("[5/%d] Checking response cache... ⚠️  migration failed: %v", totalChecks, err))
			} else {
				log.Info(fmt.Sprintf("[5/%d] Checking response cache... ✅ ready", totalChecks))
			}
			_ = cache.Close()
		}

		log.Info("")
		if !allChecks {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Diagnostics found configuration problems", nil)
		}
		log.Info("✅ All diagnostic checks passed")
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
