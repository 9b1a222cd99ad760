// Package telemetry exposes Prometheus metrics for the monitoring engine.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/optionsentry/optionsentry/internal/domain"
)

// Metrics is the registry of engine-level Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal   *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	AlertsTotal   *prometheus.CounterVec
	LastStatus    prometheus.Gauge
	LastAlerts    prometheus.Gauge
	LastNLV       prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a private registry
// so tests can instantiate it more than once.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optionsentry_cycles_total",
				Help: "Total monitoring cycles executed by outcome",
			},
			[]string{"status"},
		),

		CycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "optionsentry_cycle_duration_seconds",
				Help:    "Duration of a full monitoring cycle in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		AlertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optionsentry_alerts_total",
				Help: "Total alerts produced by level",
			},
			[]string{"level"},
		),

		LastStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "optionsentry_last_status",
				Help: "Status of the most recent cycle (0=green, 1=yellow, 2=red)",
			},
		),

		LastAlerts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "optionsentry_last_alert_count",
				Help: "Alert count of the most recent cycle",
			},
		),

		LastNLV: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "optionsentry_last_nlv",
				Help: "Net liquidation value observed on the most recent cycle",
			},
		),
	}

	m.registry.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.AlertsTotal,
		m.LastStatus,
		m.LastAlerts,
		m.LastNLV,
	)

	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCycle records the outcome of one pipeline run.
func (m *Metrics) ObserveCycle(result *domain.MonitorResult, seconds float64, nlv *float64) {
	if result == nil {
		m.CyclesTotal.WithLabelValues("error").Inc()
		return
	}
	m.CyclesTotal.WithLabelValues(string(result.Status)).Inc()
	m.CycleDuration.Observe(seconds)
	for _, a := range result.Alerts {
		m.AlertsTotal.WithLabelValues(string(a.Level)).Inc()
	}
	m.LastStatus.Set(float64(result.Status.Severity()))
	m.LastAlerts.Set(float64(len(result.Alerts)))
	if nlv != nil {
		m.LastNLV.Set(*nlv)
	}
}
