package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360/cogstream/errors"
)

// Note is a discrete unit of classified information. A note is immutable
// once classified; the only sanctioned mutation is the zone memory manager's
// consolidation pass, which may demote a PATTERN note to CRYSTAL. The zone
// memory manager owns every note after creation.
type Note struct {
	// ID is a generated, unique note identifier
	ID string `json:"id"`
	// Text is the raw, untransformed input text
	Text string `json:"text"`
	// Zone is the memory zone assigned at classification time
	Zone Zone `json:"zone"`
	// Entropy is the normalized Shannon entropy score in [0,1]
	Entropy float64 `json:"entropy"`
	// Lens is the lens actually applied during processing
	Lens LensID `json:"lens"`
	// CreatedAt is the note creation timestamp (UTC)
	CreatedAt time.Time `json:"created_at"`
	// Symbolic carries the symbolic-match summary attached at creation
	Symbolic SymbolicMetadata `json:"symbolic"`
}

// NewNote constructs a classified note with a generated identifier.
// The zone must already be derived from the entropy score by the
// entropy classifier.
func NewNote(text string, zone Zone, entropy float64, lens LensID, symbolic SymbolicMetadata) Note {
	return Note{
		ID:        uuid.NewString(),
		Text:      text,
		Zone:      zone,
		Entropy:   entropy,
		Lens:      lens,
		CreatedAt: time.Now().UTC(),
		Symbolic:  symbolic,
	}
}

// Validate ensures the note carries a consistent classification
func (n Note) Validate() error {
	if n.ID == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Note", "Validate",
			"note id cannot be empty")
	}
	if err := n.Zone.Validate(); err != nil {
		return err
	}
	if err := n.Lens.Validate(); err != nil {
		return err
	}
	if n.Entropy < 0 || n.Entropy > 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Note", "Validate",
			"entropy outside [0,1]")
	}
	return nil
}
