// Package eventbus implements the in-process publish/subscribe layer that
// decouples the processing pipeline from its streaming consumers.
//
// The bus is multi-topic and multi-subscriber. Every subscription owns an
// independent bounded queue with one of two overflow policies:
//
//   - latest: evict the oldest queued event to admit the new one
//   - reject-new: drop the incoming event, keep the backlog intact
//
// Publish never blocks regardless of policy, so a slow consumer cannot
// stall the orchestrator. Delivery is best-effort: events are not
// persisted and an unconsumed backlog is discarded on unsubscribe.
package eventbus
