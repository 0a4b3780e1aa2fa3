// =============================================================================
// Deal Pipeline - Converter Module
// =============================================================================
//
// This module runs the pipeline for a single deal file, from reading the
// source to writing exactly one artifact.
//
// CONVERSION PIPELINE:
//   1. Read the deal sheet (any supported format)
//   2. Validate it against the deal schema and the run's lookups
//   3a. Valid:   transform and write the columnar output file
//   3b. Invalid: render the failures and write the error report workbook
//   4. Archive the input file (valid runs, when enabled)
//
// A run yields either an output file or an error report, never both.
// Unreadable input and transform invariant violations abort the run with an
// error and no artifact.
//
// CONCURRENCY:
//   A Converter holds no shared mutable state. The lookups are a value passed
//   to every run, so many files can be processed at once with one LookupSet.
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/deal-pipeline/internal/config"
	"github.com/ginjaninja78/deal-pipeline/internal/csvparser"
	"github.com/ginjaninja78/deal-pipeline/internal/logging"
	"github.com/ginjaninja78/deal-pipeline/internal/lookups"
	"github.com/ginjaninja78/deal-pipeline/internal/metrics"
	"github.com/ginjaninja78/deal-pipeline/internal/reader"
	"github.com/ginjaninja78/deal-pipeline/internal/report"
	"github.com/ginjaninja78/deal-pipeline/internal/types"
	"github.com/ginjaninja78/deal-pipeline/internal/validation"
	"github.com/ginjaninja78/deal-pipeline/internal/writer"
	"github.com/ginjaninja78/deal-pipeline/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// RunID identifies the run; it is the ProcessIdentifier of every
	// output row.
	RunID string

	// AsOfDate is the run start, shared by every output row.
	AsOfDate time.Time

	// Valid reports whether the file passed validation.
	Valid bool

	// OutputFile is the transformed file. Empty unless Valid.
	OutputFile string

	// ErrorsFile is the error report. Empty when Valid.
	ErrorsFile string

	// ArchivePath is where the input was moved, when archived.
	ArchivePath string

	// Success indicates whether an artifact was written.
	Success bool

	// Error contains the error if the run aborted.
	Error error

	// Failures holds the validation failures of an invalid run.
	Failures []validation.Failure

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Format is the detected input format.
	Format reader.Format

	// RowsRead is the number of data rows read.
	RowsRead int

	// FailedRows is the number of rows with at least one failure.
	FailedRows int

	// Failures is the total number of validation failures.
	Failures int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline for one deal file.
type Converter struct {
	inputPath string
	lookups   lookups.LookupSet
	config    *config.Config

	factory *reader.Factory
	logger  *zap.Logger
	metrics *metrics.Metrics
	files   *utils.FileManager

	now   func() time.Time
	newID func() string
}

// Option customizes a Converter.
type Option func(*Converter)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) { c.logger = logging.OrNop(logger) }
}

// WithMetrics records the run in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

// WithClock sets the clock that stamps AsOfDate and file names.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithRunID sets the run id generator.
func WithRunID(newID func() string) Option {
	return func(c *Converter) { c.newID = newID }
}

// WithFactory sets the reader factory used to load the deal file.
func WithFactory(f *reader.Factory) Option {
	return func(c *Converter) { c.factory = f }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a Converter for inputPath. ls is used for this run only;
// cfg supplies directories, naming and CSV settings.
func New(inputPath string, ls lookups.LookupSet, cfg *config.Config, opts ...Option) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}

	c := &Converter{
		inputPath: inputPath,
		lookups:   ls,
		config:    cfg,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.factory == nil {
		c.factory = reader.NewFactoryWithCSVSettings(csvparser.Settings{
			Delimiter:  cfg.CSV.Delimiter,
			HeaderRows: cfg.CSV.HeaderRows,
		})
	}
	c.files = utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.ErrorsDir, cfg.InputArchiveDir)
	c.files.UseTimestampSubdirs = cfg.ArchiveDatedSubdirs
	c.files.SetClock(c.now)

	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
func (c *Converter) Run() (result Result) {
	asOf := c.now()
	result = Result{
		FilePath: c.inputPath,
		RunID:    c.newID(),
		AsOfDate: asOf,
	}
	log := c.logger.With(zap.String("file", c.inputPath), zap.String("run_id", result.RunID))

	defer func() {
		result.Stats.ProcessingTime = c.now().Sub(asOf)
		c.record(&result)
	}()

	log.Info("processing file")

	// =========================================================================
	// STEP 1: READ
	// =========================================================================

	format, err := reader.DetectFormat(c.inputPath)
	if err != nil {
		result.Error = &reader.ParseError{Path: c.inputPath, Format: format, Err: err}
		log.Error("failed to read file", zap.Error(result.Error))
		return result
	}
	result.Stats.Format = format

	table, err := c.factory.ReadSheet(c.inputPath, nil, c.config.DealsSheet)
	if err != nil {
		result.Error = fmt.Errorf("failed to read deals: %w", err)
		log.Error("failed to read file", zap.Error(err))
		return result
	}
	result.Stats.RowsRead = table.Len()
	log.Debug("read deals",
		zap.String("format", string(format)),
		zap.String("sheet", table.Name),
		zap.Int("rows", table.Len()))

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================

	validated := validation.Validate(table, c.lookups)
	result.Valid = validated.Valid
	result.Failures = validated.Failures
	result.Stats.Failures = len(validated.Failures)
	result.Stats.FailedRows = validated.FailedRows()
	log.Debug("validated deals", zap.Bool("valid", validated.Valid), zap.Int("failures", len(validated.Failures)))

	// =========================================================================
	// STEP 3: WRITE EXACTLY ONE ARTIFACT
	// =========================================================================

	if !validated.Valid {
		errorsPath, err := c.writeErrors(table, validated.Failures, result.RunID, asOf)
		if err != nil {
			result.Error = err
			log.Error("failed to write error report", zap.Error(err))
			return result
		}
		result.ErrorsFile = errorsPath
		result.Success = true
		log.Warn("validation failed",
			zap.Int("failures", len(validated.Failures)),
			zap.Int("failed_rows", result.Stats.FailedRows),
			zap.String("errors_file", errorsPath))
		return result
	}

	output, err := Transform(validated.Table, result.RunID, asOf, c.lookups)
	if err != nil {
		result.Error = fmt.Errorf("failed to transform deals: %w", err)
		log.Error("transform aborted", zap.Error(err))
		return result
	}

	outputPath, err := c.writeOutput(output, result.RunID, asOf)
	if err != nil {
		result.Error = err
		log.Error("failed to write output", zap.Error(err))
		return result
	}
	result.OutputFile = outputPath
	result.Success = true
	log.Info("wrote output", zap.String("output_file", outputPath), zap.Int("rows", output.Len()))

	// =========================================================================
	// STEP 4: ARCHIVE
	// =========================================================================

	if c.config.ArchiveOnSuccess {
		archived, err := c.files.ArchiveInputFile(c.inputPath)
		if err != nil {
			// The output is already written; archival is best effort.
			log.Warn("failed to archive input", zap.Error(err))
		} else {
			result.ArchivePath = archived
			log.Debug("archived input", zap.String("archive_path", archived))
		}
	}

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeOutput writes the transformed table to the output directory.
func (c *Converter) writeOutput(table *types.Table, runID string, asOf time.Time) (string, error) {
	w, err := writer.New(reader.FormatParquet, writer.Options{Compression: c.config.Compression})
	if err != nil {
		return "", err
	}

	name := utils.GenerateOutputFileName(c.config.OutputNameFormat, ".parquet", c.nameParams(runID), asOf)
	path := filepath.Join(c.config.OutputDir, name)
	if err := w.Write(table, path); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return path, nil
}

// writeErrors renders the failures and writes the error report workbook.
func (c *Converter) writeErrors(table *types.Table, failures []validation.Failure, runID string, asOf time.Time) (string, error) {
	w, err := writer.New(reader.FormatExcel, writer.Options{
		SheetName:  c.config.ErrorsSheetName,
		WrapColumn: report.ErrorsColumn,
	})
	if err != nil {
		return "", err
	}

	name := utils.GenerateOutputFileName(c.config.ErrorsNameFormat, ".xlsx", c.nameParams(runID), asOf)
	path := filepath.Join(c.config.ErrorsDir, name)
	if err := w.Write(report.Render(table, failures), path); err != nil {
		return "", fmt.Errorf("failed to write error report: %w", err)
	}
	return path, nil
}

func (c *Converter) nameParams(runID string) map[string]string {
	return map[string]string{
		"name": utils.BaseName(c.inputPath),
		"uuid": runID,
	}
}

// record adds the run to the metrics, when configured.
func (c *Converter) record(result *Result) {
	if c.metrics == nil {
		return
	}

	outcome := metrics.OutcomeValid
	switch {
	case result.Error != nil:
		outcome = metrics.OutcomeFailed
	case !result.Valid:
		outcome = metrics.OutcomeInvalid
	}

	c.metrics.Runs.WithLabelValues(outcome).Inc()
	c.metrics.RunDuration.Observe(result.Stats.ProcessingTime.Seconds())
	if result.Stats.RowsRead > 0 {
		c.metrics.RowsRead.WithLabelValues(string(result.Stats.Format)).Add(float64(result.Stats.RowsRead))
	}
	for _, f := range result.Failures {
		c.metrics.Failures.WithLabelValues(f.Column, f.Check).Inc()
	}
}
