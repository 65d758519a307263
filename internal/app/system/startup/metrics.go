package startup

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the boot sequence.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	stepDuration *prometheus.GaugeVec
	stepFailures *prometheus.CounterVec
	completed    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "startup",
			Name:      "step_duration_seconds",
			Help:      "Wall time taken by each startup step.",
		}, []string{"step"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "startup",
			Name:      "step_failures_total",
			Help:      "Startup steps that returned an error.",
		}, []string{"step"}),
		completed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "startup",
			Name:      "completed",
			Help:      "1 once the startup sequence has completed successfully.",
		}),
	}
	for _, c := range []prometheus.Collector{m.stepDuration, m.stepFailures, m.completed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(res StepResult) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(res.Name).Set(res.Took.Seconds())
	if res.Err != nil {
		m.stepFailures.WithLabelValues(res.Name).Inc()
	}
}

func (m *Metrics) setCompleted(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.completed.Set(1)
		return
	}
	m.completed.Set(0)
}

// Completed exposes the completion gauge.
func (m *Metrics) Completed() prometheus.Gauge { return m.completed }

// Failures exposes the per-step failure counter.
func (m *Metrics) Failures() *prometheus.CounterVec { return m.stepFailures }
