package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step results.
const (
	ResultSuccess = "success"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Metrics holds deployment counters on a private registry. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	gasUsed      *prometheus.CounterVec
	lastSuccess  prometheus.Gauge
}

func New(network string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"network": network}

	return &Metrics{
		registry: reg,
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "deployer_steps_total",
			Help:        "Deploy and link steps by outcome",
			ConstLabels: labels,
		}, []string{"kind", "result"}),
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "deployer_step_duration_seconds",
			Help:        "Time from submission to confirmation",
			ConstLabels: labels,
			Buckets:     []float64{1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),
		gasUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "deployer_gas_used_total",
			Help:        "Gas consumed by confirmed transactions",
			ConstLabels: labels,
		}, []string{"kind"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "deployer_last_success_timestamp_seconds",
			Help:        "Unix time of the last confirmed step",
			ConstLabels: labels,
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Confirmed records a successful step.
func (m *Metrics) Confirmed(kind string, took time.Duration, gas uint64) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(kind, ResultSuccess).Inc()
	m.stepDuration.WithLabelValues(kind).Observe(took.Seconds())
	m.gasUsed.WithLabelValues(kind).Add(float64(gas))
	m.lastSuccess.SetToCurrentTime()
}

// Skipped records a step that was already complete.
func (m *Metrics) Skipped(kind string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(kind, ResultSkipped).Inc()
}

// Failed records a step that ended in error.
func (m *Metrics) Failed(kind string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(kind, ResultFailed).Inc()
}

// WriteTextfile writes the metrics in node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
