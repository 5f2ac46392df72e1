// Package errors provides standardized error handling patterns for CogStream components.
//
// # Overview
//
// The errors package implements a three-class error classification system for the
// cognitive processing pipeline: Transient (temporary, may clear), Invalid (bad
// input, do not retry), and Fatal (unrecoverable, stop processing).
//
// This classification maps directly onto the engine's error taxonomy:
//
//   - Recoverable-local conditions (unknown lens, empty input, collaborator
//     failure) are Invalid or Transient and are absorbed by the orchestrator
//     through substitution or degraded output.
//   - Best-effort delivery failures (full reject-new subscriber queues) are
//     tracked as bus diagnostics and never wrapped into caller-visible errors.
//   - Fatal-to-request conditions (durable note storage failing entirely) are
//     wrapped with WrapFatal and surfaced to the caller.
//
// # Usage
//
// Wrap errors with component context as they cross package boundaries:
//
//	if err := store.Persist(ctx, note); err != nil {
//	    return errors.WrapFatal(err, "Orchestrator", "Process", "note persistence")
//	}
//
// Check classifications rather than matching error strings:
//
//	if errors.IsInvalid(err) {
//	    // substitute default lens and continue
//	}
//
// No automatic retry machinery lives in this package: the engine performs no
// retries of its own, so classification exists for routing and diagnostics,
// not for backoff loops.
package errors
