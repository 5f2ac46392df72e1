package types

import (
	"time"
)

// Bus topic constants. Topics name what happened; payload envelopes carry
// the same string in their "type" field.
const (
	// TopicZoneTransition carries per-note classification results
	TopicZoneTransition = "cognitive.zone_transition"
	// TopicSymbolicMatch carries symbolic (glyph) match results
	TopicSymbolicMatch = "symbolic.match"
	// TopicMetrics carries periodic metrics snapshots
	TopicMetrics = "cognitive.metrics"
)

// Event is an immutable, fire-and-forget bus message. Events are not
// persisted by the engine; delivery to subscribers is best-effort under
// each subscription's overflow policy.
type Event struct {
	// Topic is the bus topic the event was published on
	Topic string `json:"topic"`
	// Payload is the structured envelope delivered to subscribers
	Payload map[string]any `json:"payload"`
	// Timestamp is the publish time (UTC)
	Timestamp time.Time `json:"timestamp"`
}

// NewZoneTransitionEvent builds the cognitive.zone_transition envelope for
// a freshly classified note:
//
//	{ "type": "cognitive.zone_transition",
//	  "data": { "note_id", "output_zone", "entropy", "timestamp" } }
func NewZoneTransitionEvent(note Note) Event {
	now := time.Now().UTC()
	return Event{
		Topic: TopicZoneTransition,
		Payload: map[string]any{
			"type": TopicZoneTransition,
			"data": map[string]any{
				"note_id":     note.ID,
				"output_zone": note.Zone.String(),
				"entropy":     note.Entropy,
				"timestamp":   now.Unix(),
			},
		},
		Timestamp: now,
	}
}

// NewSymbolicMatchEvent builds the symbolic.match envelope for a note whose
// symbolic processing produced at least one glyph match.
func NewSymbolicMatchEvent(note Note) Event {
	now := time.Now().UTC()
	glyphs := make([]map[string]any, 0, len(note.Symbolic.MatchedGlyphs))
	for _, g := range note.Symbolic.MatchedGlyphs {
		glyphs = append(glyphs, map[string]any{
			"shape":         g.Shape,
			"topic":         g.Topic,
			"confidence":    g.Confidence,
			"matched_seeds": g.MatchedSeeds,
		})
	}
	return Event{
		Topic: TopicSymbolicMatch,
		Payload: map[string]any{
			"type": TopicSymbolicMatch,
			"data": map[string]any{
				"note_id":        note.ID,
				"matched_glyphs": glyphs,
				"dominant_topic": note.Symbolic.DominantTopic,
				"timestamp":      now.Unix(),
			},
		},
		Timestamp: now,
	}
}

// NewMetricsEvent builds the cognitive.metrics envelope from a snapshot
func NewMetricsEvent(snapshot MetricsSnapshot) Event {
	now := time.Now().UTC()
	return Event{
		Topic: TopicMetrics,
		Payload: map[string]any{
			"type": TopicMetrics,
			"data": map[string]any{
				"zone_metrics": snapshot,
				"timestamp":    now.Unix(),
			},
		},
		Timestamp: now,
	}
}
