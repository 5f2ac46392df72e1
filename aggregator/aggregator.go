// Package aggregator publishes periodic metrics snapshots built from the
// zone memory manager's and the orchestrator's counters.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/types"
)

// DefaultInterval is the snapshot cadence used when no interval is
// configured.
const DefaultInterval = 2 * time.Second

// ZoneSource exposes the zone distribution counters.
type ZoneSource interface {
	Metrics() (int, map[types.Zone]types.Distribution)
}

// PipelineSource exposes the orchestrator's lens and symbolic counters.
type PipelineSource interface {
	LensUsage() map[types.LensID]int
	SymbolicMatches() int
	DefaultLens() types.LensID
}

// Publisher is the bus surface the aggregator needs.
type Publisher interface {
	Publish(event types.Event) eventbus.DeliveryReport
}

// Aggregator builds MetricsSnapshots on a fixed cadence and publishes
// them on the cognitive.metrics topic. Snapshot construction only reads
// in-memory counters and never blocks on I/O.
type Aggregator struct {
	zones    ZoneSource
	pipeline PipelineSource
	bus      Publisher
	interval time.Duration
	metrics  *metric.Metrics
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithInterval overrides the snapshot cadence.
func WithInterval(d time.Duration) Option {
	return func(a *Aggregator) { a.interval = d }
}

// WithMetrics wires the snapshot counter into the given metrics set.
func WithMetrics(m *metric.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithLogger sets the aggregator logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// New creates a metrics aggregator.
func New(zones ZoneSource, pipeline PipelineSource, bus Publisher, opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		zones:    zones,
		pipeline: pipeline,
		bus:      bus,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.interval <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Aggregator", "New",
			"interval must be positive")
	}
	return a, nil
}

// Snapshot builds a consistent point-in-time view of the processing
// counters.
func (a *Aggregator) Snapshot() types.MetricsSnapshot {
	total, zoneDist := a.zones.Metrics()

	usage := a.pipeline.LensUsage()
	lensDist := make(map[types.LensID]types.Distribution, len(types.LensIDs()))
	for _, id := range types.LensIDs() {
		count := usage[id]
		lensDist[id] = types.Distribution{
			Count:      count,
			Percentage: types.RoundPercentage(count, total),
		}
	}

	return types.MetricsSnapshot{
		TotalProcessed:   total,
		ZoneDistribution: zoneDist,
		LensUsage:        lensDist,
		SymbolicMatches:  a.pipeline.SymbolicMatches(),
		DefaultLens:      a.pipeline.DefaultLens(),
	}
}

// Run publishes snapshots on the configured cadence until the context is
// canceled. Cancellation is atomic with the timer: once requested, no
// further snapshot is published, partial or otherwise.
func (a *Aggregator) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("metrics aggregator started", "interval", a.interval)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("metrics aggregator stopped")
			return ctx.Err()
		case <-ticker.C:
			// The ticker may have fired concurrently with
			// cancellation; never publish after it.
			if ctx.Err() != nil {
				a.logger.Info("metrics aggregator stopped")
				return ctx.Err()
			}
			a.publish()
		}
	}
}

func (a *Aggregator) publish() {
	snapshot := a.Snapshot()
	report := a.bus.Publish(types.NewMetricsEvent(snapshot))
	if a.metrics != nil {
		a.metrics.RecordSnapshotPublished()
	}
	if report.Dropped > 0 {
		a.logger.Debug("metrics snapshot partially dropped",
			"subscribers", report.Subscribers,
			"dropped", report.Dropped)
	}
}
