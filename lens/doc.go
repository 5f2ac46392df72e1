// Package lens provides the closed set of cognitive-lens text transforms.
//
// # Overview
//
// A lens is a named text-transform capability representing a cognitive
// processing style. The engine ships a fixed variant set:
//
//   - NEUROTYPICAL: identity transform (baseline)
//   - ADHD_BURST: bounded-size chunking with action-token emphasis
//   - AUTISM_PRECISION: explicit structural and category markers
//   - DYSLEXIA_SPATIAL: spatial anchors with visual grouping
//
// Lenses form a closed tagged-variant set resolved through a single
// registry lookup. There is no open-ended subclassing or runtime
// registration: adding a lens means adding a variant here.
//
// # Error Handling
//
// Resolve fails with a classified invalid error wrapping
// errors.ErrUnknownLens for unrecognized identifiers. Callers (the
// orchestrator) recover by substituting the registry default; the failure
// never propagates to request callers as a hard error.
//
// # Purity
//
// Transforms are pure functions with no mutable state, so a single
// Registry is safe for concurrent use by any number of request-handling
// goroutines without locking.
package lens
