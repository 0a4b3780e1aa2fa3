package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "in"),
		filepath.Join(root, "out"),
		filepath.Join(root, "errors"),
		filepath.Join(root, "archive", "in"),
	)

	require.NoError(t, fm.EnsureDirectories())
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.ErrorsDir, fm.InputArchiveDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.yaml", "c.parquet", "notes.txt", ".hidden.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	fm := NewFileManager(dir, "", "", "")
	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.parquet"),
	}, files)
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "missing"), "", "", "")
	_, err := fm.DiscoverInputFiles()
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "deals.csv")
	require.NoError(t, os.WriteFile(input, []byte("DealName\n"), 0644))

	t.Run("flat", func(t *testing.T) {
		fm := NewFileManager(root, "", "", filepath.Join(root, "archive"))
		archived, err := fm.ArchiveInputFile(input)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "archive", "deals.csv"), archived)
		assert.False(t, FileExists(input))
		assert.True(t, FileExists(archived))
	})

	t.Run("dated subdirectories", func(t *testing.T) {
		input := filepath.Join(root, "more.csv")
		require.NoError(t, os.WriteFile(input, []byte("DealName\n"), 0644))

		fm := NewFileManager(root, "", "", filepath.Join(root, "dated"))
		fm.UseTimestampSubdirs = true
		fm.now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }

		archived, err := fm.ArchiveInputFile(input)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "dated", "2024", "01", "05", "more.csv"), archived)
	})

	t.Run("missing file", func(t *testing.T) {
		fm := NewFileManager(root, "", "", filepath.Join(root, "archive"))
		_, err := fm.ArchiveInputFile(filepath.Join(root, "nope.csv"))
		assert.Error(t, err)
	})
}

func TestGenerateOutputFileName(t *testing.T) {
	at := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		ext    string
		params map[string]string
		want   string
	}{
		{
			name:   "all placeholders",
			format: "{name}_{timestamp}_{uuid}.parquet",
			ext:    ".parquet",
			params: map[string]string{"name": "deals", "uuid": "run-1"},
			want:   "deals_20240115_143022_run-1.parquet",
		},
		{
			name:   "extension appended",
			format: "{name}_errors_{date}",
			ext:    ".xlsx",
			params: map[string]string{"name": "deals"},
			want:   "deals_errors_20240115.xlsx",
		},
		{
			name:   "time placeholder",
			format: "{time}.parquet",
			ext:    ".parquet",
			want:   "143022.parquet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateOutputFileName(tt.format, tt.ext, tt.params, at))
		})
	}

	t.Run("fresh uuid", func(t *testing.T) {
		name := GenerateOutputFileName("{uuid}", "", nil, at)
		assert.Len(t, name, 36)
	})
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "deals", BaseName("in/deals.csv"))
	assert.Equal(t, "deals", BaseName("in/deals.parquet.gzip"))
	assert.Equal(t, "deals", BaseName("deals"))
	assert.Equal(t, ".env", BaseName(".env"))
}

func TestWriteSummaryLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	start := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:    start,
		EndTime:      start.Add(2 * time.Second),
		TotalFiles:   2,
		ValidFiles:   1,
		InvalidFiles: 0,
		FailedFiles:  1,
		TotalRows:    3,
		ProcessedFiles: []ProcessedFileInfo{
			{InputFile: "deals.csv", RunID: "run-1", Valid: true, OutputFile: "out/deals.parquet", Rows: 3},
		},
		FailedFilesList: []FailedFileInfo{
			{InputFile: "broken.yaml", ErrorMessage: "failed to parse"},
		},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processing_summary_20240115_143022.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Duration:       2s")
	assert.Contains(t, text, "Run ID:       run-1")
	assert.Contains(t, text, "Status:       valid")
	assert.Contains(t, text, "Error: failed to parse")
	assert.True(t, strings.HasSuffix(text, "End of Summary\n"))
}
