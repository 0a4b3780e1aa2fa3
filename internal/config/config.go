// =============================================================================
// Deal Pipeline - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// LOAD ORDER (later sources win):
//   1. Built-in defaults for anything left unset
//   2. config.yaml (optional; a missing file is not an error)
//   3. Environment variables prefixed DEALPIPE_, optionally seeded from a
//      .env file (variables already set in the environment are kept)
//
// Defaults are applied after the file and environment have been read, so
// they only ever fill gaps. The result is then validated as a whole.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DEALPIPE_OUTPUT_DIR.
const EnvPrefix = "DEALPIPE"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for deal files when none are named explicitly.
	// Default: "./input"
	InputDir string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`

	// OutputDir receives the transformed columnar files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	// ErrorsDir receives the error report workbooks.
	// Default: "./errors"
	ErrorsDir string `yaml:"errors_dir" envconfig:"ERRORS_DIR" validate:"required"`

	// InputArchiveDir receives input files after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" envconfig:"INPUT_ARCHIVE_DIR" validate:"required"`

	// LookupsFile is the reference data file (countries, currencies,
	// companies). It can also be given on the command line.
	LookupsFile string `yaml:"lookups_file" envconfig:"LOOKUPS_FILE"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// DealsSheet is the sheet index read from multi-sheet deal files.
	// Default: 0
	DealsSheet int `yaml:"deals_sheet" envconfig:"DEALS_SHEET" validate:"gte=0"`

	// CSV controls how delimited deal files are read.
	CSV CSVSettings `yaml:"csv" envconfig:"CSV"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names transformed files. Placeholders:
	//   {name}      - input file name without extension
	//   {uuid}      - the run id
	//   {timestamp} - run start (YYYYMMDD_HHMMSS)
	// Default: "{name}_{timestamp}_{uuid}.parquet"
	OutputNameFormat string `yaml:"output_name_format" envconfig:"OUTPUT_NAME_FORMAT" validate:"required"`

	// ErrorsNameFormat names error reports, with the same placeholders.
	// Default: "{name}_errors_{timestamp}_{uuid}.xlsx"
	ErrorsNameFormat string `yaml:"errors_name_format" envconfig:"ERRORS_NAME_FORMAT" validate:"required"`

	// Compression is the columnar output codec.
	// Default: "gzip"
	Compression string `yaml:"compression" envconfig:"COMPRESSION" validate:"oneof=gzip snappy zstd brotli none uncompressed"`

	// ErrorsSheetName is the sheet written in error reports.
	// Default: "Errors"
	ErrorsSheetName string `yaml:"errors_sheet_name" envconfig:"ERRORS_SHEET_NAME" validate:"required,max=31"`

	// =========================================================================
	// LOGGING AND METRICS
	// =========================================================================

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// LogFormat is json or console.
	// Default: "console"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=json console"`

	// MetricsFile, when set, receives run metrics in the Prometheus text
	// format after every process command.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1,max=64"`

	// ArchiveOnSuccess moves each input file to InputArchiveDir once its
	// output has been written.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success" envconfig:"ARCHIVE_ON_SUCCESS"`

	// ArchiveDatedSubdirs files archived inputs under year/month/day
	// subdirectories of InputArchiveDir.
	// Default: false
	ArchiveDatedSubdirs bool `yaml:"archive_dated_subdirs" envconfig:"ARCHIVE_DATED_SUBDIRS"`
}

// CSVSettings contains settings for parsing delimited files.
type CSVSettings struct {
	// Delimiter is the field separator: a character or one of "tab",
	// "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER"`

	// HeaderRows is the number of rows merged into the header.
	// Default: 1
	HeaderRows int `yaml:"header_rows" envconfig:"HEADER_ROWS" validate:"gte=0"`
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file at configPath (which may be empty or
// missing), the .env file in the working directory and the environment.
func Load(configPath string) (*Config, error) {
	return LoadWithEnvFile(configPath, ".env")
}

// LoadWithEnvFile is Load with an explicit .env path.
func LoadWithEnvFile(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}

	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ErrorsDir == "" {
		config.ErrorsDir = "./errors"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.HeaderRows == 0 {
		config.CSV.HeaderRows = 1
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{name}_{timestamp}_{uuid}.parquet"
	}
	if config.ErrorsNameFormat == "" {
		config.ErrorsNameFormat = "{name}_errors_{timestamp}_{uuid}.xlsx"
	}
	if config.Compression == "" {
		config.Compression = "gzip"
	}
	if config.ErrorsSheetName == "" {
		config.ErrorsSheetName = "Errors"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// Validate checks the configuration's field constraints.
func Validate(config *Config) error {
	return validator.New().Struct(config)
}
