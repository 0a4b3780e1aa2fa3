package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.RowsRead.WithLabelValues("csv").Add(3)
	m.Failures.WithLabelValues("D1", "not_nullable").Inc()
	m.Runs.WithLabelValues(OutcomeInvalid).Inc()
	m.RunDuration.Observe(0.2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsRead.WithLabelValues("csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeValid)))

	// Separate instances never share counters.
	assert.Equal(t, 0.0, testutil.ToFloat64(New().RowsRead.WithLabelValues("csv")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Runs.WithLabelValues(OutcomeValid).Inc()

	path := filepath.Join(t.TempDir(), "metrics", "dealpipe.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dealpipe_runs_total{outcome="valid"} 1`)
}
