// =============================================================================
// Deal Pipeline - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the pipeline over
// every deal file.
//
// COMMAND USAGE:
//   dealpipe process [files...] [flags]
//
// FLAGS:
//   --lookups     : Reference data file (overrides lookups_file)
//   --concurrency : Files processed at once (overrides max_concurrency)
//   --archive     : Move inputs to the archive after a valid run
//
// PROCESSING PIPELINE:
//   1. Load the configuration
//   2. Build the lookups once
//   3. Take the named files, or discover deal files in the input directory
//   4. Run each file through the converter, a bounded number at a time;
//      every run receives the lookups as a parameter
//   5. Print and write the summary, export metrics
//
// A file that cannot be read does not stop the others. The command fails
// when any run aborted; invalid files are a normal outcome.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/deal-pipeline/internal/config"
	"github.com/ginjaninja78/deal-pipeline/internal/converter"
	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/metrics"
	"github.com/ginjaninja78/deal-pipeline/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// lookupsFile overrides the configured lookups file. Shared with validate.
var lookupsFile string

// concurrency overrides max_concurrency when positive.
var concurrency int

// archive turns on archival regardless of the configuration.
var archive bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Validate deal files and write outputs or error reports",
	Long: `The process command validates each deal file against the deal schema and
the lookups. Without arguments it processes every recognised file in the
input directory.

For each file exactly one artifact is written:
  - a valid file produces a Parquet file in the output directory
  - an invalid file produces an Excel error report in the errors directory

A processing summary is written to the output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&lookupsFile,
		"lookups",
		"",
		"Path to the lookups file (default from lookups_file)",
	)

	processCmd.Flags().IntVar(
		&concurrency,
		"concurrency",
		0,
		"Number of files processed at once (default from max_concurrency)",
	)

	processCmd.Flags().BoolVar(
		&archive,
		"archive",
		false,
		"Move inputs to the input archive after a valid run",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.MaxConcurrency = concurrency
	}
	if archive {
		cfg.ArchiveOnSuccess = true
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// =========================================================================
	// STEP 2: BUILD LOOKUPS
	// =========================================================================

	ls, err := buildLookups(cfg, logger)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.ErrorsDir, cfg.InputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	inputFiles := args
	if len(inputFiles) == 0 {
		inputFiles, err = fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No deal files found in the input directory.")
		return nil
	}

	logger.Info("processing files", zap.Int("files", len(inputFiles)), zap.Int("concurrency", cfg.MaxConcurrency))

	// =========================================================================
	// STEP 4: PROCESS FILES CONCURRENTLY
	// =========================================================================

	m := metrics.New()
	results := make([]converter.Result, len(inputFiles))

	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for i, file := range inputFiles {
		g.Go(func() error {
			results[i] = converter.New(file, ls, cfg,
				converter.WithLogger(logger),
				converter.WithMetrics(m),
			).Run()
			return nil
		})
	}
	_ = g.Wait()

	// =========================================================================
	// STEP 5: SUMMARY AND METRICS
	// =========================================================================

	summary := summarize(results, startTime)
	printSummary(cmd, summary, results)

	summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		logger.Warn("failed to write summary", zap.Error(err))
	} else {
		logger.Debug("wrote summary", zap.String("path", summaryPath))
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// buildLookups reads the lookups named by --lookups or the configuration.
func buildLookups(cfg *config.Config, logger *zap.Logger) (lookups.LookupSet, error) {
	path := cfg.LookupsFile
	if lookupsFile != "" {
		path = lookupsFile
	}
	if path == "" {
		return lookups.LookupSet{}, fmt.Errorf("no lookups file: set --lookups or lookups_file")
	}

	ls, err := lookups.Build(path)
	if err != nil {
		return lookups.LookupSet{}, fmt.Errorf("failed to build lookups: %w", err)
	}

	logger.Debug("built lookups",
		zap.String("path", path),
		zap.Int("countries", len(ls.Countries())),
		zap.Int("currencies", len(ls.Currencies())),
		zap.Int("companies", len(ls.CompanyIDs())))
	return ls, nil
}

// summarize folds the run results into a processing summary.
func summarize(results []converter.Result, startTime time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		EndTime:    time.Now(),
		TotalFiles: len(results),
	}

	for _, r := range results {
		summary.TotalRows += r.Stats.RowsRead
		summary.FailedRows += r.Stats.FailedRows
		summary.Failures += r.Stats.Failures

		if r.Error != nil {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: r.Error.Error(),
			})
			continue
		}

		output := r.OutputFile
		if r.Valid {
			summary.ValidFiles++
		} else {
			summary.InvalidFiles++
			output = r.ErrorsFile
		}
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			RunID:       r.RunID,
			Valid:       r.Valid,
			OutputFile:  output,
			ArchivePath: r.ArchivePath,
			Rows:        r.Stats.RowsRead,
			FailedRows:  r.Stats.FailedRows,
			ProcessTime: r.Stats.ProcessingTime,
		})
	}

	return summary
}

func printSummary(cmd *cobra.Command, summary utils.ProcessingSummary, results []converter.Result) {
	out := cmd.OutOrStdout()

	for _, r := range results {
		name := filepath.Base(r.FilePath)
		switch {
		case r.Error != nil:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, r.Error)
		case r.Valid:
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, r.OutputFile)
		default:
			fmt.Fprintf(out, "  ! %s: %d failure(s) in %d row(s) -> %s\n",
				name, r.Stats.Failures, r.Stats.FailedRows, r.ErrorsFile)
		}
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Valid:           %d\n", summary.ValidFiles)
	fmt.Fprintf(out, "Invalid:         %d\n", summary.InvalidFiles)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
}
