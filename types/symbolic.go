package types

// GlyphMatch represents a single matched glyph pattern with its confidence.
// Matches are produced by the symbolic processing collaborator and are
// immutable once attached to a note.
type GlyphMatch struct {
	// Shape is the glyph identifier (e.g. "APEX", "CORE")
	Shape string `json:"shape"`
	// Topic is the semantic topic the glyph maps to
	Topic string `json:"topic"`
	// Confidence is the match confidence in [0,1]
	Confidence float64 `json:"confidence"`
	// MatchedSeeds lists the seed tokens that triggered the match
	MatchedSeeds []string `json:"matched_seeds"`
}

// SymbolicMetadata is the ordered result of symbolic processing for one
// text input. Matches are ordered by descending confidence. The zero value
// is a valid "no matches" result.
type SymbolicMetadata struct {
	// MatchedGlyphs holds matches in descending confidence order
	MatchedGlyphs []GlyphMatch `json:"matched_glyphs"`
	// DominantTopic is the topic of the highest-confidence match,
	// empty when there are no matches
	DominantTopic string `json:"dominant_topic,omitempty"`
	// ProcessingConfidence is the confidence of the strongest match
	ProcessingConfidence float64 `json:"processing_confidence"`
}

// IsEmpty reports whether symbolic processing produced no matches
func (sm SymbolicMetadata) IsEmpty() bool {
	return len(sm.MatchedGlyphs) == 0
}
