package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemalens/schemalens/internal/core/store"
	"github.com/schemalens/schemalens/internal/observability"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := loadedConfig()

		cache, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer cache.Close() // nolint:errcheck // best-effort cleanup

		if err := cache.Migrate(ctx); err != nil {
			return err
		}

		pruned, err := cache.PruneExpired(ctx)
		if err != nil {
			return err
		}

		observability.CLILogger.Info("Cache pruned", zap.Int64("removed", pruned))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}
