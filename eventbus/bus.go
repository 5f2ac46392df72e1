package eventbus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/pkg/buffer"
	"github.com/c360/cogstream/types"
)

// OverflowPolicy selects per-subscription behavior when the subscriber's
// queue is full.
type OverflowPolicy string

const (
	// PolicyLatest evicts the oldest buffered event to admit the new one.
	// The subscriber always sees the most recent window of events and may
	// miss intermediate ones.
	PolicyLatest OverflowPolicy = "latest"

	// PolicyRejectNew drops the new event and reports non-delivery for
	// that subscriber. Buffered events stay intact.
	PolicyRejectNew OverflowPolicy = "reject-new"
)

// Validate returns an error for unrecognized policies.
func (p OverflowPolicy) Validate() error {
	switch p {
	case PolicyLatest, PolicyRejectNew:
		return nil
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "OverflowPolicy", "Validate",
			"unknown overflow policy "+string(p))
	}
}

func (p OverflowPolicy) bufferPolicy() buffer.OverflowPolicy {
	if p == PolicyRejectNew {
		return buffer.DropNewest
	}
	return buffer.DropOldest
}

// DeliveryReport summarizes one publish across a topic's subscribers.
// Delivered counts subscribers whose queue admitted the event; Dropped
// counts non-deliveries (reject-new rejections plus latest-policy
// evictions of older events).
type DeliveryReport struct {
	Subscribers int
	Delivered   int
	Dropped     int
}

// DefaultQueueSize is the subscription queue capacity used when no
// explicit size is given.
const DefaultQueueSize = 64

// Bus is an in-process multi-topic publish/subscribe mechanism. Each
// subscription owns a bounded queue with its own overflow policy, so no
// subscriber's backlog can stall a publisher. Publish never blocks.
type Bus struct {
	mu        sync.RWMutex
	topics    map[string]map[uuid.UUID]*Subscription
	queueSize int
	policy    OverflowPolicy
	metrics   *metric.Metrics
	logger    *slog.Logger
	closed    bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithMetrics wires publish and drop counters into the given metrics set.
func WithMetrics(m *metric.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// WithLogger sets the bus logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// WithDefaultQueueSize overrides DefaultQueueSize for subscriptions
// that do not set an explicit size.
func WithDefaultQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithDefaultPolicy overrides PolicyLatest for subscriptions that do
// not set an explicit overflow policy.
func WithDefaultPolicy(p OverflowPolicy) Option {
	return func(b *Bus) {
		if p.Validate() == nil {
			b.policy = p
		}
	}
}

// New creates an event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		topics:    make(map[string]map[uuid.UUID]*Subscription),
		queueSize: DefaultQueueSize,
		policy:    PolicyLatest,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	queueSize int
	policy    OverflowPolicy
}

// WithQueueSize sets the subscription's queue capacity.
func WithQueueSize(n int) SubscribeOption {
	return func(c *subscribeConfig) { c.queueSize = n }
}

// WithPolicy sets the subscription's overflow policy.
func WithPolicy(p OverflowPolicy) SubscribeOption {
	return func(c *subscribeConfig) { c.policy = p }
}

// Subscribe registers a new subscriber on the given topic. The returned
// subscription remains open until Unsubscribe or bus Close; events are
// drained by the consumer at its own pace via Next or TryNext.
func (b *Bus) Subscribe(topic string, opts ...SubscribeOption) (*Subscription, error) {
	cfg := subscribeConfig{
		queueSize: b.queueSize,
		policy:    b.policy,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.queueSize <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Bus", "Subscribe",
			"queue size must be positive")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.WrapInvalid(errors.ErrTopicClosed, "Bus", "Subscribe", "bus closed")
	}

	sub := &Subscription{
		id:     uuid.New(),
		topic:  topic,
		policy: cfg.policy,
		queue:  buffer.NewRing[types.Event](cfg.queueSize, cfg.policy.bufferPolicy()),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		bus:    b,
	}

	if b.topics[topic] == nil {
		b.topics[topic] = make(map[uuid.UUID]*Subscription)
	}
	b.topics[topic][sub.id] = sub

	b.logger.Debug("subscriber registered",
		"topic", topic,
		"subscription_id", sub.id.String(),
		"queue_size", cfg.queueSize,
		"policy", string(cfg.policy))

	return sub, nil
}

// Publish delivers an event to every subscriber of its topic. Delivery is
// best-effort and never blocks: each subscription's overflow policy
// decides what happens against a full queue. A topic with no subscribers
// is not an error.
func (b *Bus) Publish(event types.Event) DeliveryReport {
	b.mu.RLock()
	subs := b.topics[event.Topic]
	report := DeliveryReport{Subscribers: len(subs)}
	for _, sub := range subs {
		admitted, dropped := sub.deliver(event)
		if admitted {
			report.Delivered++
		}
		if dropped {
			report.Dropped++
			if b.metrics != nil {
				b.metrics.RecordEventDropped(event.Topic, string(sub.policy))
			}
		}
	}
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.RecordEventPublished(event.Topic)
	}
	if report.Dropped > 0 {
		b.logger.Debug("events dropped on publish",
			"topic", event.Topic,
			"dropped", report.Dropped,
			"subscribers", report.Subscribers)
	}
	return report
}

// SubscriberCount returns the number of active subscribers on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Topics returns the topics that currently have subscribers.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.topics))
	for topic, subs := range b.topics {
		if len(subs) > 0 {
			out = append(out, topic)
		}
	}
	return out
}

// Close shuts the bus down. All subscriptions are closed and their queued
// events discarded; further Subscribe calls fail and Publish becomes a
// no-op for the removed subscribers.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*Subscription
	for _, subs := range b.topics {
		for _, sub := range subs {
			all = append(all, sub)
		}
	}
	b.topics = make(map[string]map[uuid.UUID]*Subscription)
	b.mu.Unlock()

	for _, sub := range all {
		sub.shutdown()
	}
	return nil
}

// unsubscribe removes a subscription from the registry.
func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	if subs := b.topics[sub.topic]; subs != nil {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
	b.mu.Unlock()
}
