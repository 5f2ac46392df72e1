// Package lens provides the closed set of cognitive-lens text transforms
// and the registry that resolves lens identifiers to transform capabilities.
package lens

import (
	"fmt"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/types"
)

// Lens is a named text-transform capability representing a cognitive
// processing style. Transforms are pure: the same input always yields the
// same output, and implementations hold no mutable state.
type Lens interface {
	// ID returns the lens identifier
	ID() types.LensID
	// Transform applies the lens to text and returns the transformed text.
	// Transform never fails; empty input passes through unchanged.
	Transform(text string) string
}

// Registry maps lens identifiers to transform capabilities. The variant set
// is fixed at construction: lenses are a closed enumeration, not an
// open-ended registration surface.
type Registry struct {
	lenses      map[types.LensID]Lens
	defaultLens types.LensID
}

// NewRegistry creates a registry holding the full fixed variant set with
// the given default lens. An invalid default falls back to NEUROTYPICAL.
func NewRegistry(defaultLens types.LensID) *Registry {
	if defaultLens.Validate() != nil {
		defaultLens = types.LensNeurotypical
	}

	return &Registry{
		lenses: map[types.LensID]Lens{
			types.LensNeurotypical:    neurotypicalLens{},
			types.LensADHDBurst:       adhdBurstLens{},
			types.LensAutismPrecision: autismPrecisionLens{},
			types.LensDyslexiaSpatial: dyslexiaSpatialLens{},
		},
		defaultLens: defaultLens,
	}
}

// Resolve returns the lens for the given identifier. Unknown identifiers
// fail with a classified invalid error wrapping ErrUnknownLens; the
// orchestrator recovers by substituting the default lens.
func (r *Registry) Resolve(id types.LensID) (Lens, error) {
	l, ok := r.lenses[id]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownLens, "Registry", "Resolve",
			fmt.Sprintf("lens %q", string(id)))
	}
	return l, nil
}

// Default returns the configured default lens
func (r *Registry) Default() Lens {
	return r.lenses[r.defaultLens]
}

// DefaultID returns the configured default lens identifier
func (r *Registry) DefaultID() types.LensID {
	return r.defaultLens
}
