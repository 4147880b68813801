// Package observability holds the shared CLI logger.
package observability

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

// CLILogger is used by all CLI commands.
var CLILogger *logging.Logger

// InitCLILogger initializes the CLI logger. Verbose output is enabled by
// the --verbose flag or a debug-or-lower configured level.
func InitCLILogger(serviceName, level string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}

	if verbose || level == "debug" || level == "trace" {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// exitWithCodeStderr exits with a semantic exit code, writing to stderr.
// Used for failures before the logger itself is available.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}
	os.Exit(int(exitCode))
}
