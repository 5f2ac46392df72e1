package storage

import (
	"encoding/json"
	"time"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/types"
)

// noteRecord is the stored wire form of a note. The record is versioned
// independently of the in-memory Note type so persisted data survives
// type changes.
type noteRecord struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Zone      string    `json:"zone"`
	Entropy   float64   `json:"entropy"`
	Lens      string    `json:"lens"`
	CreatedAt time.Time `json:"created_at"`

	MatchedGlyphs []glyphRecord `json:"matched_glyphs,omitempty"`
	DominantTopic string        `json:"dominant_topic,omitempty"`
	Confidence    float64       `json:"confidence,omitempty"`
}

type glyphRecord struct {
	Shape        string   `json:"shape"`
	Topic        string   `json:"topic"`
	Confidence   float64  `json:"confidence"`
	MatchedSeeds []string `json:"matched_seeds"`
}

const recordVersion = 1

// EncodeNote serializes a note into its stored form.
func EncodeNote(note types.Note) ([]byte, error) {
	rec := noteRecord{
		Version:       recordVersion,
		ID:            note.ID,
		Text:          note.Text,
		Zone:          string(note.Zone),
		Entropy:       note.Entropy,
		Lens:          string(note.Lens),
		CreatedAt:     note.CreatedAt,
		DominantTopic: note.Symbolic.DominantTopic,
		Confidence:    note.Symbolic.ProcessingConfidence,
	}
	for _, g := range note.Symbolic.MatchedGlyphs {
		rec.MatchedGlyphs = append(rec.MatchedGlyphs, glyphRecord{
			Shape:        g.Shape,
			Topic:        g.Topic,
			Confidence:   g.Confidence,
			MatchedSeeds: g.MatchedSeeds,
		})
	}
	return json.Marshal(rec)
}

// DecodeNote deserializes a stored record back into a note.
func DecodeNote(data []byte) (types.Note, error) {
	var rec noteRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.Note{}, errors.WrapInvalid(err, "storage", "DecodeNote", "corrupt note record")
	}

	note := types.Note{
		ID:        rec.ID,
		Text:      rec.Text,
		Zone:      types.Zone(rec.Zone),
		Entropy:   rec.Entropy,
		Lens:      types.LensID(rec.Lens),
		CreatedAt: rec.CreatedAt,
		Symbolic: types.SymbolicMetadata{
			DominantTopic:        rec.DominantTopic,
			ProcessingConfidence: rec.Confidence,
		},
	}
	for _, g := range rec.MatchedGlyphs {
		note.Symbolic.MatchedGlyphs = append(note.Symbolic.MatchedGlyphs, types.GlyphMatch{
			Shape:        g.Shape,
			Topic:        g.Topic,
			Confidence:   g.Confidence,
			MatchedSeeds: g.MatchedSeeds,
		})
	}
	return note, nil
}

// NoteKey builds the bucket key for a note. Zone-prefixed keys make
// zone-scoped listing a prefix scan.
func NoteKey(zone types.Zone, id string) string {
	return string(zone) + "." + id
}
