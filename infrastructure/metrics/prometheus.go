// Package metrics provides the Prometheus-backed MetricsCollector used
// across the settlement service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/votechain/internal/ports"
)

// PrometheusMetrics implements ports.MetricsCollector with Prometheus
// primitives registered in the default registry. Label cardinality is
// fixed up front: every metric carries the pipeline stage (or the
// oracle model) plus the outcome status.
type PrometheusMetrics struct {
	stageLatency   *prometheus.HistogramVec
	stageCounter   *prometheus.CounterVec
	oracleLatency  *prometheus.HistogramVec
	oracleCounter  *prometheus.CounterVec
	systemGauges   *prometheus.GaugeVec
	histogramStore *prometheus.HistogramVec
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a collector and registers its metrics
// in the global Prometheus registry. Construct it once per process;
// duplicate registration panics by promauto contract.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "settlement_stage_duration_seconds",
				Help:    "Execution time of settlement pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "status"},
		),
		stageCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_stage_total",
				Help: "Total settlement pipeline stage executions by outcome.",
			},
			[]string{"stage", "status"},
		),
		oracleLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oracle_request_duration_seconds",
				Help:    "Latency of scoring oracle requests.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"model", "status"},
		),
		oracleCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_requests_total",
				Help: "Total scoring oracle requests by outcome.",
			},
			[]string{"model", "status"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "settlement_system_state",
				Help: "Current system state values for the settlement service.",
			},
			[]string{"metric"},
		),
		histogramStore: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "settlement_observations",
				Help:    "General-purpose settlement observations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records operation latency. Oracle request metrics are
// routed to the oracle histogram, everything else to the stage one.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	status := labelOr(labels, "status", "unknown")

	if operation == "oracle_request_duration_seconds" {
		pm.oracleLatency.WithLabelValues(
			labelOr(labels, "model", "unknown"), status,
		).Observe(duration.Seconds())
		return
	}
	pm.stageLatency.WithLabelValues(
		labelOr(labels, "stage", operation), status,
	).Observe(duration.Seconds())
}

// RecordCounter increments an outcome counter.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	status := labelOr(labels, "status", "unknown")

	if metric == "oracle_requests_total" {
		pm.oracleCounter.WithLabelValues(
			labelOr(labels, "model", "unknown"), status,
		).Add(value)
		return
	}
	pm.stageCounter.WithLabelValues(
		labelOr(labels, "stage", metric), status,
	).Add(value)
}

// RecordGauge sets a system state gauge.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value in the general-purpose histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	pm.histogramStore.WithLabelValues(metric).Observe(value)
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}
