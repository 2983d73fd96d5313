package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimer(t *testing.T) {
	timer := NewTimer()
	require.NotNil(t, timer)
	assert.False(t, timer.start.IsZero())
	assert.Less(t, time.Since(timer.start), time.Second)
}

func TestTimerDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	first := timer.Duration()
	assert.GreaterOrEqual(t, first, 50*time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	assert.Greater(t, timer.Duration(), first)
}

func TestTimerObserveDurationVec(t *testing.T) {
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "test_pcs_duration_seconds",
			Help: "Test duration histogram vec",
		},
		[]string{"verb"},
	)

	timer := NewTimer()
	timer.ObserveDurationVec(vec, "resource")
	timer.ObserveDuration(vec.WithLabelValues("constraint"))

	assert.Equal(t, 2, testutil.CollectAndCount(vec))
}

func TestWriteTextfile(t *testing.T) {
	ReconcileTotal.WithLabelValues("resource", "create").Inc()

	path := filepath.Join(t.TempDir(), "burrow.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `burrow_reconcile_total{action="create",kind="resource"}`)
}
