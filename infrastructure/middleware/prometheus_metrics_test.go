package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatherFamily returns the named metric family from the registry, or nil.
func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *struct {
	labels map[string]string
	value  float64
} {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		labels := make(map[string]string)
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		value := 0.0
		switch {
		case m.GetCounter() != nil:
			value = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			value = m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			value = float64(m.GetHistogram().GetSampleCount())
		}
		return &struct {
			labels map[string]string
			value  float64
		}{labels: labels, value: value}
	}
	return nil
}

// TestPrometheusMetrics_RecordCounter verifies counter increments carry
// the run labels.
func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordCounter("study_runs_total", 1, map[string]string{
		"study":  "transit",
		"scorer": "weighted_sum",
		"status": "success",
	})
	pm.RecordCounter("study_runs_total", 1, map[string]string{
		"study":  "transit",
		"scorer": "weighted_sum",
		"status": "success",
	})

	got := gatherFamily(t, reg, "mcda_operations_total")
	require.NotNil(t, got)
	assert.Equal(t, 2.0, got.value)
	assert.Equal(t, "study_runs_total", got.labels["operation"])
	assert.Equal(t, "transit", got.labels["study"])
	assert.Equal(t, "success", got.labels["status"])
}

// TestPrometheusMetrics_RecordLatency verifies histogram observations.
func TestPrometheusMetrics_RecordLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordLatency("study_run", 25*time.Millisecond, map[string]string{"scorer": "weighted_sum"})
	pm.RecordLatency("study_run", 40*time.Millisecond, map[string]string{"scorer": "weighted_sum"})

	got := gatherFamily(t, reg, "mcda_operation_duration_seconds")
	require.NotNil(t, got)
	assert.Equal(t, 2.0, got.value)
	assert.Equal(t, "weighted_sum", got.labels["scorer"])
}

// TestPrometheusMetrics_RecordGauge verifies gauge sets overwrite.
func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordGauge("active_trials", 10, map[string]string{"study": "transit"})
	pm.RecordGauge("active_trials", 4, map[string]string{"study": "transit"})

	got := gatherFamily(t, reg, "mcda_system_state")
	require.NotNil(t, got)
	assert.Equal(t, 4.0, got.value)
	assert.Equal(t, "active_trials", got.labels["metric"])
}

// TestPrometheusMetrics_MissingLabels verifies absent labels fall back to
// a fixed placeholder instead of panicking.
func TestPrometheusMetrics_MissingLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordCounter("study_runs_total", 1, nil)

	got := gatherFamily(t, reg, "mcda_operations_total")
	require.NotNil(t, got)
	assert.Equal(t, "unknown", got.labels["study"])
	assert.Equal(t, "unknown", got.labels["status"])
}
