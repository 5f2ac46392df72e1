// Package glyph provides the symbolic-processing collaborator and its
// default seed-based implementation.
//
// # Overview
//
// Symbolic processing recognizes glyph patterns in free-form text. Each
// glyph shape carries a semantic topic and a set of seed tokens; text
// matches a shape when it contains at least one seed. Exact word-boundary
// hits score 1.0, substring hits 0.7, and a shape's confidence is the
// average over its matched seeds.
//
// The Processor interface is the collaborator contract the orchestrator
// consumes: Match(text) returns ordered SymbolicMetadata, may return an
// empty result, and never fails for any input.
//
// # Glyph Packs
//
// Shapes load from JSON pack files validated against a schema before use:
//
//	{
//	  "shapes": {
//	    "APEX": {"topic": "initiation", "seeds": ["apex", "ignite", "start"]}
//	  }
//	}
//
// DefaultPack supplies the built-in five-shape pack when no file is
// configured. SeedProcessor instances are immutable after construction and
// safe for concurrent use.
package glyph
