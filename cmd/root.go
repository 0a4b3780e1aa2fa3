// =============================================================================
// Deal Pipeline - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (dealpipe)
//   ├── processCmd  (dealpipe process)
//   ├── validateCmd (dealpipe validate)
//   ├── detectCmd   (dealpipe detect)
//   └── versionCmd  (dealpipe version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   load the configuration and build their logger through loadConfig and
//   newLogger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/deal-pipeline/internal/config"
	"github.com/ginjaninja78/deal-pipeline/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. A missing file is not
// an error; defaults and DEALPIPE_* environment variables apply.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dealpipe",
	Short: "Deal pipeline - validate and normalise deal files",
	Long: `dealpipe reads deal files (CSV, YAML, Excel or Parquet), validates every
row against the deal schema and the reference lookups, and writes either a
transformed Parquet file or an Excel error report for each input.

Example Usage:
  dealpipe process --lookups lookups.xlsx           # Process the input directory
  dealpipe process --lookups lookups.xlsx deals.csv # Process one file
  dealpipe validate --lookups lookups.xlsx deals.csv
  dealpipe detect deals.bin`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command. --verbose overrides the
// configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.LogFormat)
}
