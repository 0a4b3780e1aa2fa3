// =============================================================================
// Deal Pipeline - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks one deal file and
// prints every failure without writing any artifact.
//
// COMMAND USAGE:
//   dealpipe validate <file> --lookups <lookups file>
//
// EXIT STATUS:
//   0 when the file is valid, 1 when it has failures or cannot be read.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/deal-pipeline/internal/csvparser"
	"github.com/ginjaninja78/deal-pipeline/internal/reader"
	"github.com/ginjaninja78/deal-pipeline/internal/validation"
)

// errInvalid is returned when the validated file has failures.
var errInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a deal file and print its failures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&lookupsFile,
		"lookups",
		"",
		"Path to the lookups file (default from lookups_file)",
	)
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ls, err := buildLookups(cfg, logger)
	if err != nil {
		return err
	}

	factory := reader.NewFactoryWithCSVSettings(csvparser.Settings{
		Delimiter:  cfg.CSV.Delimiter,
		HeaderRows: cfg.CSV.HeaderRows,
	})
	table, err := factory.ReadSheet(path, nil, cfg.DealsSheet)
	if err != nil {
		return err
	}

	result := validation.Validate(table, ls)
	if result.Valid {
		fmt.Fprintf(out, "%s: valid (%d rows)\n", path, table.Len())
		return nil
	}

	fmt.Fprintf(out, "%s: %d failure(s) in %d row(s)\n", path, len(result.Failures), result.FailedRows())
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  %s\n", f.Error())
	}
	return errInvalid
}
