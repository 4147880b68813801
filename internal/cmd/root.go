// Package cmd wires the schemalens CLI.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/observability"
)

var (
	verbose bool

	appConfig *config.Config

	// Version info set by the main package.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "schemalens",
	Short: "Generate dbt schema.yml files with an LLM",
	Long: `schemalens scans a dbt project's models/ tree, asks a configured LLM
provider to document each SQL model, and writes one schema.yml per model
directory.

Provider selection and credentials come from environment variables
(LLM_PROVIDER, OPENAI_API_KEY, ...) or a schemalens.yaml file.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig loads .env, resolves configuration, and sets up logging before
// any command runs.
func initConfig() {
	// Provider keys commonly live in a project-local .env; a missing file
	// is fine.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		exitConfigError("Failed to load configuration", err)
	}
	appConfig = cfg

	observability.InitCLILogger("schemalens", cfg.Logging.Level, verbose)
}
