// Package metrics wires the session orchestrator's internal counters into
// Prometheus, exposed via /metrics on the subscriber transport's HTTP mux.
//
// Grounded on forgequant-context8-mcp/analytics/internal/instrumentation/metrics.go
// (promauto Histogram/Counter/Gauge construction), since the teacher
// (alanyoungcy-polymarketbot) carries no metrics package of its own — this
// is cross-pack enrichment per SPEC_FULL.md §11.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the session orchestrator
// updates over its lifetime.
type Metrics struct {
	FastTickDurationMs prometheus.Histogram
	SlowTickDurationMs prometheus.Histogram
	DirtyMarkets       prometheus.Gauge
	SignalsEmitted     *prometheus.CounterVec
	LadderViolations   *prometheus.CounterVec
	MalformedMessages  prometheus.Counter
	RawEventsArchived  prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	return &Metrics{
		FastTickDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyticscore_fast_tick_duration_ms",
			Help:    "Wall-clock duration of a fast tick (stats recompute + stats emission).",
			Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		SlowTickDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyticscore_slow_tick_duration_ms",
			Help:    "Wall-clock duration of a slow tick (ladder build + arb scan + signal lifecycle).",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		DirtyMarkets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "analyticscore_dirty_markets",
			Help: "Number of markets with a pending dirty bit at the start of the last fast tick.",
		}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analyticscore_signals_emitted_total",
			Help: "Total signals emitted from the signal lifecycle, by type.",
		}, []string{"type"}),
		LadderViolations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analyticscore_ladder_violations_total",
			Help: "Total monotonicity violations detected, by ladder type.",
		}, []string{"ladder_type"}),
		MalformedMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "analyticscore_malformed_messages_total",
			Help: "Total inbound upstream messages dropped for failing to decode.",
		}),
		RawEventsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "analyticscore_raw_events_archived_total",
			Help: "Total raw inbound messages appended to the optional Redis archive stream.",
		}),
	}
}

// ObserveFastTick records one fast tick's duration and the number of
// markets carrying a dirty bit at its start.
func (m *Metrics) ObserveFastTick(durationMs float64, dirtyCount int) {
	m.FastTickDurationMs.Observe(durationMs)
	m.DirtyMarkets.Set(float64(dirtyCount))
}

// ObserveSlowTick records one slow tick's duration.
func (m *Metrics) ObserveSlowTick(durationMs float64) {
	m.SlowTickDurationMs.Observe(durationMs)
}

// RecordSignal increments the emitted-signal counter for one signal type.
func (m *Metrics) RecordSignal(signalType string) {
	m.SignalsEmitted.WithLabelValues(signalType).Inc()
}

// RecordLadderViolation increments the violation counter for one ladder type.
func (m *Metrics) RecordLadderViolation(ladderType string) {
	m.LadderViolations.WithLabelValues(ladderType).Inc()
}

// RecordMalformedMessage increments the dropped-message counter.
func (m *Metrics) RecordMalformedMessage() {
	m.MalformedMessages.Inc()
}

// RecordRawArchived increments the archived raw-event counter.
func (m *Metrics) RecordRawArchived(n int) {
	m.RawEventsArchived.Add(float64(n))
}
