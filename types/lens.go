package types

import (
	"fmt"

	"github.com/c360/cogstream/errors"
)

// LensID identifies a cognitive-lens transform. The lens set is closed:
// new lenses are added here and in the lens package, never by open-ended
// registration at runtime.
type LensID string

// Lens identifier constants
const (
	// LensNeurotypical is the baseline identity transform
	LensNeurotypical LensID = "neurotypical"
	// LensADHDBurst chunks text into bounded segments and emphasizes
	// action tokens
	LensADHDBurst LensID = "adhd"
	// LensAutismPrecision injects explicit structural and category markers
	LensAutismPrecision LensID = "autism"
	// LensDyslexiaSpatial injects spatial anchor markers and chunks text
	// by visual grouping
	LensDyslexiaSpatial LensID = "dyslexia"
)

// LensIDs returns all known lens identifiers in stable order
func LensIDs() []LensID {
	return []LensID{LensNeurotypical, LensADHDBurst, LensAutismPrecision, LensDyslexiaSpatial}
}

// Validate ensures the lens identifier is a known variant
func (l LensID) Validate() error {
	switch l {
	case LensNeurotypical, LensADHDBurst, LensAutismPrecision, LensDyslexiaSpatial:
		return nil
	default:
		return errors.WrapInvalid(errors.ErrUnknownLens, "LensID", "Validate",
			fmt.Sprintf("unknown lens: %s", string(l)))
	}
}

// String implements fmt.Stringer for LensID
func (l LensID) String() string {
	return string(l)
}
