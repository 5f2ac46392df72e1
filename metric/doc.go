// Package metric provides Prometheus metrics management for the CogStream engine.
//
// # Overview
//
// The package centralizes metric registration around a single
// MetricsRegistry wrapping a private Prometheus registry. Core engine
// metrics (note throughput, entropy distribution, bus delivery, snapshot
// cadence) are created and registered at construction; components register
// their own collectors through MetricsRegistrar with duplicate detection.
//
// # Relationship to the metrics snapshot
//
// Prometheus metrics are operational telemetry for scrape-based
// monitoring. They are independent of the MetricsSnapshot published on the
// cognitive.metrics bus topic, which is derived from the orchestrator's and
// zone memory manager's own counters: the snapshot is the product surface,
// these metrics are the ops surface. Both must agree on totals, which the
// integration tests assert.
//
// # HTTP Exposure
//
// Server exposes the registry at /metrics (OpenMetrics enabled) plus a
// trivial /health endpoint.
package metric
