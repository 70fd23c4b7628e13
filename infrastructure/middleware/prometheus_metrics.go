// Package middleware provides cross-cutting concerns for the scoring
// engine: metrics collection and request tracing around scorer runs.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/policyforge/mcda/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of scoring runs,
// sensitivity trial throughput, and run latency.
type PrometheusMetrics struct {
	runCounter *prometheus.CounterVec
	runLatency *prometheus.HistogramVec
	gauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all metrics with the given registerer. Pass prometheus.DefaultRegisterer
// for the global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		runCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcda_operations_total",
				Help: "Total operations performed by the scoring engine.",
			},
			[]string{"operation", "study", "scorer", "status"},
		),
		runLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcda_operation_duration_seconds",
				Help:    "Execution time of scoring engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "scorer"},
		),
		gauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcda_system_state",
				Help: "Current state values for the scoring engine.",
			},
			[]string{"metric", "study"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.runLatency.WithLabelValues(operation, labelOr(labels, "scorer")).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	pm.runCounter.WithLabelValues(
		metric,
		labelOr(labels, "study"),
		labelOr(labels, "scorer"),
		labelOr(labels, "status"),
	).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.gauges.WithLabelValues(metric, labelOr(labels, "study")).Set(value)
}

func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok {
		return v
	}
	return "unknown"
}
