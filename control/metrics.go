// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the dispatch loop.
// All methods accept a nil receiver so the loop can run without metrics.

package control

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const metricsNamespace = "hioload"

// LoopMetrics holds the dispatch loop counters.
type LoopMetrics struct {
	ticks       prometheus.Counter
	resyncs     prometheus.Counter
	interrupted prometheus.Counter
	dispatched  prometheus.Counter
	retired     prometheus.Counter
	waitSeconds prometheus.Histogram
}

// NewLoopMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewLoopMetrics(reg prometheus.Registerer) (*LoopMetrics, error) {
	m := &LoopMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "loop",
			Name:      "ticks_total",
			Help:      "Periodic tick invocations.",
		}),
		resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "loop",
			Name:      "clock_resyncs_total",
			Help:      "Tick schedule resynchronizations after a clock discontinuity.",
		}),
		interrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "loop",
			Name:      "wait_interrupted_total",
			Help:      "Wait calls interrupted by a signal.",
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "loop",
			Name:      "callbacks_total",
			Help:      "Handler callbacks invoked.",
		}),
		retired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "loop",
			Name:      "retired_slots_total",
			Help:      "Ready slots skipped because their registration was removed.",
		}),
		waitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "loop",
			Name:      "wait_duration_seconds",
			Help:      "Time spent blocked in the wait primitive.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.ticks, err = register(reg, m.ticks); err != nil {
		return nil, err
	}
	if m.resyncs, err = register(reg, m.resyncs); err != nil {
		return nil, err
	}
	if m.interrupted, err = register(reg, m.interrupted); err != nil {
		return nil, err
	}
	if m.dispatched, err = register(reg, m.dispatched); err != nil {
		return nil, err
	}
	if m.retired, err = register(reg, m.retired); err != nil {
		return nil, err
	}
	if m.waitSeconds, err = register(reg, m.waitSeconds); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the existing collector when c duplicates one already in reg.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Tick counts one tick invocation.
func (m *LoopMetrics) Tick() {
	if m != nil {
		m.ticks.Inc()
	}
}

// Resync counts one schedule resynchronization.
func (m *LoopMetrics) Resync() {
	if m != nil {
		m.resyncs.Inc()
	}
}

// Interrupted counts one wait cut short by a signal.
func (m *LoopMetrics) Interrupted() {
	if m != nil {
		m.interrupted.Inc()
	}
}

// Dispatched records one dispatch cycle.
func (m *LoopMetrics) Dispatched(invoked, retired int) {
	if m == nil {
		return
	}
	m.dispatched.Add(float64(invoked))
	m.retired.Add(float64(retired))
}

// Waited observes the time spent in one wait.
func (m *LoopMetrics) Waited(d time.Duration) {
	if m != nil {
		m.waitSeconds.Observe(d.Seconds())
	}
}

// Snapshot returns the current counter values keyed by short name.
func (m *LoopMetrics) Snapshot() map[string]any {
	out := make(map[string]any, 6)
	if m == nil {
		return out
	}
	out["ticks"] = counterValue(m.ticks)
	out["clock_resyncs"] = counterValue(m.resyncs)
	out["wait_interrupted"] = counterValue(m.interrupted)
	out["callbacks"] = counterValue(m.dispatched)
	out["retired_slots"] = counterValue(m.retired)

	var h dto.Metric
	if err := m.waitSeconds.Write(&h); err == nil {
		out["waits"] = h.GetHistogram().GetSampleCount()
	}
	return out
}

func counterValue(c prometheus.Counter) float64 {
	var d dto.Metric
	if err := c.Write(&d); err != nil {
		return 0
	}
	return d.GetCounter().GetValue()
}
