// Package orchestrator wires the classification pipeline: entropy
// scoring, lens transformation, symbolic matching, durable persistence,
// zone storage, and event publication, in that order.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/cogstream/entropy"
	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/glyph"
	"github.com/c360/cogstream/lens"
	"github.com/c360/cogstream/memory"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/storage"
	"github.com/c360/cogstream/types"
)

// ProcessingResult is the synchronous answer to one Process call.
type ProcessingResult struct {
	Note            types.Note             `json:"note"`
	TransformedText string                 `json:"transformed_text"`
	Symbolic        types.SymbolicMetadata `json:"symbolic_metadata"`
}

// Orchestrator runs the per-request pipeline and owns the lens-usage and
// symbolic-match counters behind the metrics snapshot. Safe for
// concurrent use by many request handlers.
type Orchestrator struct {
	lenses  *lens.Registry
	glyphs  glyph.Processor
	manager *memory.Manager
	store   storage.Store
	bus     *eventbus.Bus

	mu              sync.RWMutex
	lensUsage       map[types.LensID]int
	symbolicMatches int

	metrics *metric.Metrics
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore sets the durable persistence backend. Without one, notes
// live only in the zone memory manager.
func WithStore(s storage.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithMetrics wires pipeline counters into the given metrics set.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator over the given collaborators.
func New(lenses *lens.Registry, glyphs glyph.Processor, manager *memory.Manager,
	bus *eventbus.Bus, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		lenses:    lenses,
		glyphs:    glyphs,
		manager:   manager,
		bus:       bus,
		lensUsage: make(map[types.LensID]int),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process classifies text and runs it through the full pipeline. The
// lensID selects the cognitive lens; empty means the registry default.
//
// Failures in lens resolution and symbolic matching degrade (default
// lens, empty metadata) rather than aborting. Only a failure to record
// the note surfaces as an error: an unrecorded note would silently break
// the invariant that every processed note is counted and stored.
func (o *Orchestrator) Process(ctx context.Context, text string, lensID types.LensID) (ProcessingResult, error) {
	start := time.Now()

	score, zone := entropy.Classify(text)

	applied := o.resolveLens(lensID)
	transformed := applied.Transform(text)

	// Symbolic matching always sees the original text, not the
	// lens-transformed rendering.
	symbolic := o.glyphs.Match(text)

	note := types.NewNote(text, zone, score, applied.ID(), symbolic)

	// Persist before the zone memory write: once the manager has counted
	// the note, the zone and lens counters must move together, so no
	// failure may interleave between them.
	if err := o.persist(ctx, note); err != nil {
		return ProcessingResult{}, err
	}
	if err := o.manager.Store(note); err != nil {
		return ProcessingResult{}, errors.WrapFatal(err, "Orchestrator", "Process",
			"record note in zone memory")
	}

	o.mu.Lock()
	o.lensUsage[applied.ID()]++
	if !symbolic.IsEmpty() {
		o.symbolicMatches++
	}
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.RecordNoteProcessed(string(zone), string(applied.ID()), score)
		if !symbolic.IsEmpty() {
			o.metrics.RecordSymbolicMatch()
		}
		o.metrics.RecordProcessingDuration("orchestrator", "process", time.Since(start))
	}

	// Fire-and-forget: Publish never blocks, so the caller's return is
	// not gated on subscriber backlogs.
	o.bus.Publish(types.NewZoneTransitionEvent(note))
	if !symbolic.IsEmpty() {
		o.bus.Publish(types.NewSymbolicMatchEvent(note))
	}

	return ProcessingResult{
		Note:            note,
		TransformedText: transformed,
		Symbolic:        symbolic,
	}, nil
}

// resolveLens maps a lens identifier to a capability, substituting the
// registry default for unknown identifiers. The fallback is recorded but
// never surfaced to the caller.
func (o *Orchestrator) resolveLens(lensID types.LensID) lens.Lens {
	if lensID == "" {
		return o.lenses.Default()
	}
	applied, err := o.lenses.Resolve(lensID)
	if err != nil {
		o.logger.Warn("unknown lens, substituting default",
			"requested", string(lensID),
			"default", string(o.lenses.DefaultID()))
		if o.metrics != nil {
			o.metrics.RecordLensFallback()
		}
		return o.lenses.Default()
	}
	return applied
}

// persist writes the note to the durable backend. Only fatal storage
// failures abort the request; transient ones degrade with a log line.
func (o *Orchestrator) persist(ctx context.Context, note types.Note) error {
	if o.store == nil {
		return nil
	}
	err := o.store.Persist(ctx, note)
	if err == nil {
		return nil
	}
	if errors.IsFatal(err) {
		return errors.WrapFatal(err, "Orchestrator", "Process", "persist note "+note.ID)
	}
	o.logger.Warn("note persistence degraded",
		"note_id", note.ID,
		"error", err)
	return nil
}

// LensUsage returns a copy of the per-lens processed counts.
func (o *Orchestrator) LensUsage() map[types.LensID]int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[types.LensID]int, len(o.lensUsage))
	for id, count := range o.lensUsage {
		out[id] = count
	}
	return out
}

// SymbolicMatches returns the count of notes that produced at least one
// glyph match.
func (o *Orchestrator) SymbolicMatches() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.symbolicMatches
}

// DefaultLens returns the registry's configured default lens.
func (o *Orchestrator) DefaultLens() types.LensID {
	return o.lenses.DefaultID()
}
