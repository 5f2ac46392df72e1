// Package memory implements zone-partitioned note storage with
// distribution metrics and an optional background consolidation pass.
package memory

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/c360/cogstream/entropy"
	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/types"
)

// Config holds manager settings.
type Config struct {
	// ConsolidationEnabled turns the background consolidation pass on.
	ConsolidationEnabled bool `json:"consolidation_enabled"`
	// ConsolidationInterval is how often the consolidation pass runs.
	ConsolidationInterval time.Duration `json:"consolidation_interval"`
	// ConsolidationAge is the minimum residency in the pattern zone
	// before a note becomes eligible for re-scoring.
	ConsolidationAge time.Duration `json:"consolidation_age"`
}

// DefaultConfig returns manager settings with consolidation off.
func DefaultConfig() Config {
	return Config{
		ConsolidationEnabled:  false,
		ConsolidationInterval: 60 * time.Second,
		ConsolidationAge:      5 * time.Minute,
	}
}

// Validate checks config consistency.
func (c Config) Validate() error {
	if c.ConsolidationEnabled {
		if c.ConsolidationInterval <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"consolidation interval must be positive")
		}
		if c.ConsolidationAge <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"consolidation age must be positive")
		}
	}
	return nil
}

// Manager partitions stored notes by zone, preserving insertion order
// within each zone, and maintains the counters behind the zone
// distribution metrics. All methods are safe for concurrent use; Metrics
// observes a consistent snapshot of total and per-zone counts.
type Manager struct {
	mu     sync.RWMutex
	zones  map[types.Zone][]types.Note
	counts map[types.Zone]int
	total  int

	config  Config
	metrics *metric.Metrics
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics wires consolidation counters into the given metrics set.
func WithMetrics(m *metric.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(mgr *Manager) { mgr.logger = l }
}

// NewManager creates a zone memory manager.
func NewManager(config Config, opts ...Option) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		zones:  make(map[types.Zone][]types.Note),
		counts: make(map[types.Zone]int),
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Store appends a note to its zone's ordered collection and bumps the
// zone counter and running total.
func (m *Manager) Store(note types.Note) error {
	if err := note.Zone.Validate(); err != nil {
		return errors.WrapInvalid(errors.ErrUnknownZone, "Manager", "Store",
			"note "+note.ID+" carries zone "+string(note.Zone))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.zones[note.Zone] = append(m.zones[note.Zone], note)
	m.counts[note.Zone]++
	m.total++
	return nil
}

// Metrics returns the total processed count and per-zone distribution.
// Percentages are rounded to one decimal and are all zero when nothing
// has been processed yet.
func (m *Manager) Metrics() (int, map[types.Zone]types.Distribution) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dist := make(map[types.Zone]types.Distribution, len(types.Zones()))
	for _, zone := range types.Zones() {
		count := m.counts[zone]
		dist[zone] = types.Distribution{
			Count:      count,
			Percentage: types.RoundPercentage(count, m.total),
		}
	}
	return m.total, dist
}

// TotalProcessed returns the running total of stored notes.
func (m *Manager) TotalProcessed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// ZoneCount returns the number of notes resident in a zone.
func (m *Manager) ZoneCount(zone types.Zone) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[zone]
}

// Notes returns a copy of the notes resident in a zone, in insertion
// order.
func (m *Manager) Notes(zone types.Zone) []types.Note {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := m.zones[zone]
	out := make([]types.Note, len(notes))
	copy(out, notes)
	return out
}

// Find locates a stored note by ID across all zones.
func (m *Manager) Find(id string) (types.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, notes := range m.zones {
		for _, note := range notes {
			if note.ID == id {
				return note, nil
			}
		}
	}
	return types.Note{}, errors.Wrap(errors.ErrNoteNotFound, "Manager", "Find", "note "+id)
}

// Consolidate re-scores pattern-zone notes older than the configured age,
// applies the consolidation decay, and demotes those whose aged entropy
// has settled into crystal territory. Demotion is the only permitted
// move; promotion never happens here. The pass runs off the request path
// and returns the number of notes moved.
func (m *Manager) Consolidate(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pattern := m.zones[types.ZonePattern]
	if len(pattern) == 0 {
		return 0
	}

	cutoff := now.Add(-m.config.ConsolidationAge)
	kept := pattern[:0]
	moved := 0
	for _, note := range pattern {
		if note.CreatedAt.After(cutoff) {
			kept = append(kept, note)
			continue
		}
		score, _ := entropy.Classify(note.Text)
		aged := agedEntropy(score, now.Sub(note.CreatedAt), m.config.ConsolidationAge)
		if entropy.ZoneFor(aged) != types.ZoneCrystal {
			kept = append(kept, note)
			continue
		}
		note.Zone = types.ZoneCrystal
		note.Entropy = aged
		m.zones[types.ZoneCrystal] = append(m.zones[types.ZoneCrystal], note)
		m.counts[types.ZonePattern]--
		m.counts[types.ZoneCrystal]++
		moved++
		if m.metrics != nil {
			m.metrics.RecordConsolidationMove()
		}
	}
	m.zones[types.ZonePattern] = kept

	if moved > 0 {
		m.logger.Info("consolidation pass demoted notes",
			"moved", moved,
			"pattern_remaining", len(kept))
	}
	return moved
}

// agedEntropy applies the consolidation decay: a note's re-derived
// entropy halves for each full consolidation age it remains resident in
// the pattern zone past its eligibility point. Decay only ever lowers
// entropy, so a demotion can never turn into a promotion.
func agedEntropy(score float64, age, unit time.Duration) float64 {
	periods := float64(age)/float64(unit) - 1
	if periods <= 0 {
		return score
	}
	return score * math.Pow(0.5, periods)
}

// RunConsolidation runs the periodic consolidation loop until the context
// is canceled. It returns immediately when consolidation is disabled.
func (m *Manager) RunConsolidation(ctx context.Context) error {
	if !m.config.ConsolidationEnabled {
		return nil
	}

	ticker := time.NewTicker(m.config.ConsolidationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			m.Consolidate(now)
		}
	}
}
