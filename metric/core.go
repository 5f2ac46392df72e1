package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all engine-level metrics shared across components
type Metrics struct {
	// Component lifecycle
	ComponentStatus *prometheus.GaugeVec

	// Processing pipeline
	NotesProcessed     *prometheus.CounterVec
	EntropyScore       prometheus.Histogram
	LensFallbacks      prometheus.Counter
	SymbolicMatches    prometheus.Counter
	ProcessingDuration *prometheus.HistogramVec

	// Event bus
	EventsPublished *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec

	// Aggregation and maintenance
	SnapshotsPublished prometheus.Counter
	ConsolidationMoves prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all engine metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ComponentStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cogstream",
				Subsystem: "component",
				Name:      "status",
				Help:      "Component status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"component"},
		),

		NotesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "notes",
				Name:      "processed_total",
				Help:      "Total number of notes processed",
			},
			[]string{"zone", "lens"},
		),

		EntropyScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "cogstream",
				Subsystem: "notes",
				Name:      "entropy_score",
				Help:      "Distribution of entropy scores for processed notes",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
		),

		LensFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "lens",
				Name:      "fallbacks_total",
				Help:      "Total requests that fell back to the default lens",
			},
		),

		SymbolicMatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "symbolic",
				Name:      "matches_total",
				Help:      "Total notes with at least one symbolic match",
			},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cogstream",
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"component", "operation"},
		),

		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "bus",
				Name:      "events_published_total",
				Help:      "Total events published per topic",
			},
			[]string{"topic"},
		),

		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "bus",
				Name:      "events_dropped_total",
				Help:      "Total events dropped by subscriber queues per topic and policy",
			},
			[]string{"topic", "policy"},
		),

		SnapshotsPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "aggregator",
				Name:      "snapshots_published_total",
				Help:      "Total metrics snapshots published",
			},
		),

		ConsolidationMoves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogstream",
				Subsystem: "memory",
				Name:      "consolidation_moves_total",
				Help:      "Total notes demoted from PATTERN to CRYSTAL by consolidation",
			},
		),
	}
}

// RecordComponentStatus updates a component status metric
func (m *Metrics) RecordComponentStatus(component string, status int) {
	m.ComponentStatus.WithLabelValues(component).Set(float64(status))
}

// RecordNoteProcessed increments the processed-notes counter and observes
// the note's entropy score
func (m *Metrics) RecordNoteProcessed(zone, lens string, entropy float64) {
	m.NotesProcessed.WithLabelValues(zone, lens).Inc()
	m.EntropyScore.Observe(entropy)
}

// RecordLensFallback increments the default-lens fallback counter
func (m *Metrics) RecordLensFallback() {
	m.LensFallbacks.Inc()
}

// RecordSymbolicMatch increments the symbolic-match counter
func (m *Metrics) RecordSymbolicMatch() {
	m.SymbolicMatches.Inc()
}

// RecordProcessingDuration records processing time for an operation
func (m *Metrics) RecordProcessingDuration(component, operation string, duration time.Duration) {
	m.ProcessingDuration.WithLabelValues(component, operation).Observe(duration.Seconds())
}

// RecordEventPublished increments the published-events counter for a topic
func (m *Metrics) RecordEventPublished(topic string) {
	m.EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventDropped increments the dropped-events counter for a topic and policy
func (m *Metrics) RecordEventDropped(topic, policy string) {
	m.EventsDropped.WithLabelValues(topic, policy).Inc()
}

// RecordSnapshotPublished increments the published-snapshots counter
func (m *Metrics) RecordSnapshotPublished() {
	m.SnapshotsPublished.Inc()
}

// RecordConsolidationMove increments the consolidation-demotion counter
func (m *Metrics) RecordConsolidationMove() {
	m.ConsolidationMoves.Inc()
}
