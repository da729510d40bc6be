package monitoring

import (
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds all Prometheus metrics of one bridge instance.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Call metrics
	CallsTotal    *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	PendingCalls  prometheus.Gauge
	LateResponses prometheus.Counter

	// Channel metrics
	EventsTotal   *prometheus.CounterVec
	DroppedFrames *prometheus.CounterVec

	// Helper process metrics
	HelperStarts *prometheus.CounterVec
	HelperExits  *prometheus.CounterVec
	HelperState  prometheus.Gauge

	registry *prometheus.Registry

	// Snapshot for JSON output - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for JSON output.
type Snapshot struct {
	TotalCalls    int64   `json:"total_calls"`
	FailedCalls   int64   `json:"failed_calls"`
	Timeouts      int64   `json:"timeouts"`
	LateResponses int64   `json:"late_responses"`
	Events        int64   `json:"events"`
	HelperStarts  int64   `json:"helper_starts"`
	TotalDuration float64 `json:"total_duration_seconds"`
}

// Call outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeLost    = "lost"
)

// NewMetrics registers the metrics on reg. A nil reg creates a private
// registry so several bridges can coexist in one process.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mist_calls_total",
				Help: "Total number of calls dispatched to the helper",
			},
			[]string{"op", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mist_call_duration_seconds",
				Help:    "Round trip time of helper calls in seconds",
				Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"op"},
		),
		PendingCalls: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mist_pending_calls",
				Help: "Number of calls waiting for a response",
			},
		),
		LateResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mist_late_responses_total",
				Help: "Responses that arrived after their call was abandoned",
			},
		),

		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mist_events_total",
				Help: "Callback events received from the helper",
			},
			[]string{"callback"},
		),
		DroppedFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mist_dropped_frames_total",
				Help: "Frames discarded by the dispatcher",
			},
			[]string{"reason"},
		),

		HelperStarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mist_helper_starts_total",
				Help: "Helper launch attempts",
			},
			[]string{"outcome"},
		),
		HelperExits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mist_helper_exits_total",
				Help: "Helper terminations by cause",
			},
			[]string{"cause"},
		),
		HelperState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mist_helper_state",
				Help: "Current supervisor state (0 not started, 1 running, 2 unresponsive, 3 exited, 4 killed)",
			},
		),
	}
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordCall records one dispatched call.
func (m *Metrics) RecordCall(op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(op, outcome).Inc()
	m.CallDuration.WithLabelValues(op).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCalls++
	m.snapshot.TotalDuration += duration.Seconds()
	switch outcome {
	case OutcomeSuccess:
	case OutcomeTimeout:
		m.snapshot.Timeouts++
		m.snapshot.FailedCalls++
	default:
		m.snapshot.FailedCalls++
	}
	m.mu.Unlock()
}

// SetPending sets the number of outstanding calls.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.PendingCalls.Set(float64(n))
}

// IncLateResponses counts a response for an abandoned call.
func (m *Metrics) IncLateResponses() {
	if m == nil {
		return
	}
	m.LateResponses.Inc()

	m.mu.Lock()
	m.snapshot.LateResponses++
	m.mu.Unlock()
}

// RecordEvent counts a callback event.
func (m *Metrics) RecordEvent(callback string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(callback).Inc()

	m.mu.Lock()
	m.snapshot.Events++
	m.mu.Unlock()
}

// RecordDroppedFrame counts a discarded frame.
func (m *Metrics) RecordDroppedFrame(reason string) {
	if m == nil {
		return
	}
	m.DroppedFrames.WithLabelValues(reason).Inc()
}

// RecordHelperStart counts a launch attempt.
func (m *Metrics) RecordHelperStart(outcome string) {
	if m == nil {
		return
	}
	m.HelperStarts.WithLabelValues(outcome).Inc()

	if outcome == OutcomeSuccess {
		m.mu.Lock()
		m.snapshot.HelperStarts++
		m.mu.Unlock()
	}
}

// RecordHelperExit counts a helper termination.
func (m *Metrics) RecordHelperExit(cause string) {
	if m == nil {
		return
	}
	m.HelperExits.WithLabelValues(cause).Inc()
}

// SetHelperState publishes the supervisor state.
func (m *Metrics) SetHelperState(state int) {
	if m == nil {
		return
	}
	m.HelperState.Set(float64(state))
}

// Snapshot returns a copy of the running totals.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot
}

// WriteText writes every registered metric in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "writing %s", mf.GetName())
		}
	}
	return nil
}
