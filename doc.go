// Package cogstream provides a real-time cognitive classification and
// orchestration engine for free-form text.
//
// # Overview
//
// CogStream ingests text, scores it by information content, routes it into
// one of three memory zones, applies a cognitive-lens transform, extracts
// symbolic (glyph) metadata, and publishes the resulting state transitions
// and aggregate metrics to streaming subscribers.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│            Engine                   │  Component lifecycle
//	│  (start, stop, health, shutdown)    │  Signal handling
//	└─────────────────────────────────────┘
//	           ↓ orchestrates
//	┌─────────────────────────────────────┐
//	│     CognitiveOrchestrator           │  entropy → zone → lens →
//	│   (classify, transform, store)      │  glyph → store → publish
//	└─────────────────────────────────────┘
//	           ↓ publishes via
//	┌─────────────────────────────────────┐
//	│           EventBus                  │  Multi-topic, bounded
//	│  (per-subscriber queues, policies)  │  per-subscriber queues
//	└─────────────────────────────────────┘
//	           ↓ consumed by
//	┌─────────────────────────────────────┐
//	│   Streaming Outputs                 │  WebSocket broadcast,
//	│   (websocket, NATS bridge)          │  NATS republish
//	└─────────────────────────────────────┘
//
// # Processing Pipeline
//
// A single Process call runs, in order:
//
//  1. Entropy classification (entropy package) - normalized Shannon entropy
//     of the token frequency distribution maps text to a memory zone.
//  2. Lens transformation (lens package) - a closed set of cognitive-style
//     transforms; unknown lenses fall back to the configured default.
//  3. Symbolic matching (glyph package) - seed-based glyph recognition on
//     the original, untransformed text.
//  4. Note construction and storage (memory + storage packages).
//  5. Counter updates and fire-and-forget event publication (eventbus).
//
// The MetricsAggregator (aggregator package) independently snapshots the
// processing counters on a fixed interval and publishes them on the
// cognitive.metrics topic.
//
// # Package Layout
//
//   - entropy: pure entropy scoring and zone classification
//   - lens: cognitive lens registry and transforms
//   - glyph: symbolic pattern matching (glyph packs)
//   - memory: three-zone note manager and consolidation
//   - eventbus: in-process multi-topic publish/subscribe
//   - orchestrator: the processing pipeline entry point
//   - aggregator: periodic metrics snapshots
//   - storage: pluggable note persistence (memory, NATS JetStream KV)
//   - output/websocket: streaming WebSocket broadcast of bus events
//   - output/natsbridge: republishes bus topics to NATS subjects
//   - metric: Prometheus metrics registry and core engine metrics
//   - config: application configuration loading and validation
//   - engine: composition root and component lifecycle
//
// Shared domain types (Note, Zone, Event, snapshots) live in the types
// package; classified error handling lives in the errors package.
package cogstream
