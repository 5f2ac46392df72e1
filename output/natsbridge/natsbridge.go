// Package natsbridge republishes bus events onto NATS subjects so other
// processes can consume the zone-transition, symbolic, and metrics
// streams without a direct connection to this engine.
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/cogstream/component"
	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/types"
)

// Config holds bridge settings.
type Config struct {
	// URL is the NATS server address.
	URL string `json:"url"`
	// SubjectPrefix is prepended to each bus topic to form the NATS
	// subject.
	SubjectPrefix string `json:"subject_prefix"`
	// Topics are the bus topics to bridge.
	Topics []string `json:"topics"`
	// QueueSize bounds the per-topic bus subscription queue.
	QueueSize int `json:"queue_size"`
}

// DefaultConfig returns bridge settings for a local NATS server.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "cogstream",
		Topics:        []string{types.TopicZoneTransition, types.TopicSymbolicMatch, types.TopicMetrics},
		QueueSize:     256,
	}
}

// Bridge forwards bus events to NATS. Forwarding is best-effort with the
// same delivery posture as the in-process bus: a NATS outage drops
// events, it never stalls the pipeline.
type Bridge struct {
	config Config
	bus    *eventbus.Bus
	conn   *nats.Conn

	mu        sync.Mutex
	running   bool
	shutdown  chan struct{}
	wg        *sync.WaitGroup
	startTime time.Time

	forwarded  atomic.Int64
	errorCount atomic.Int64

	metrics *metric.Metrics
	logger  *slog.Logger
}

var _ component.LifecycleComponent = (*Bridge)(nil)
var _ component.HealthReporter = (*Bridge)(nil)

// Option configures a Bridge.
type Option func(*Bridge)

// WithMetrics wires forwarding counters into the given metrics set.
func WithMetrics(m *metric.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// WithLogger sets the bridge logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// New creates a NATS bridge over the given bus.
func New(cfg Config, bus *eventbus.Bus, opts ...Option) *Bridge {
	b := &Bridge{
		config: cfg,
		bus:    bus,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the component name.
func (b *Bridge) Name() string { return "nats-bridge" }

// Initialize validates configuration.
func (b *Bridge) Initialize() error {
	if b.config.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Bridge", "Initialize", "nats url required")
	}
	if len(b.config.Topics) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Bridge", "Initialize",
			"at least one bus topic required")
	}
	if b.config.QueueSize <= 0 {
		b.config.QueueSize = DefaultConfig().QueueSize
	}
	return nil
}

// Start connects to NATS and begins forwarding.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	conn, err := nats.Connect(b.config.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return errors.WrapTransient(err, "Bridge", "Start", "connect to "+b.config.URL)
	}
	b.conn = conn

	b.shutdown = make(chan struct{})
	b.wg = &sync.WaitGroup{}

	subs := make([]*eventbus.Subscription, 0, len(b.config.Topics))
	for _, topic := range b.config.Topics {
		sub, err := b.bus.Subscribe(topic,
			eventbus.WithQueueSize(b.config.QueueSize),
			eventbus.WithPolicy(eventbus.PolicyLatest))
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			conn.Close()
			return errors.Wrap(err, "Bridge", "Start", "subscribe to topic "+topic)
		}
		subs = append(subs, sub)
	}

	b.wg.Add(len(subs))
	for _, sub := range subs {
		go b.forward(ctx, sub)
	}

	b.running = true
	b.startTime = time.Now()
	b.logger.Info("nats bridge started",
		"url", b.config.URL,
		"prefix", b.config.SubjectPrefix,
		"topics", b.config.Topics)
	return nil
}

// Stop drains the bridge and closes the NATS connection.
func (b *Bridge) Stop(timeout time.Duration) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.shutdown)
	wg := b.wg
	conn := b.conn
	b.mu.Unlock()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(timeout):
		conn.Close()
		return errors.WrapTransient(errors.ErrConnectionTimeout, "Bridge", "Stop",
			"forwarders did not finish within timeout")
	}

	if err := conn.Drain(); err != nil {
		conn.Close()
	}
	return nil
}

// Health reports connection state and forwarding counters.
func (b *Bridge) Health() component.HealthStatus {
	b.mu.Lock()
	running := b.running
	conn := b.conn
	b.mu.Unlock()

	healthy := running && conn != nil && conn.IsConnected()
	return component.HealthStatus{
		Healthy:    healthy,
		LastCheck:  time.Now(),
		ErrorCount: int(b.errorCount.Load()),
		Uptime:     time.Since(b.startTime),
	}
}

// Forwarded returns the number of events republished to NATS.
func (b *Bridge) Forwarded() int64 { return b.forwarded.Load() }

func (b *Bridge) forward(ctx context.Context, sub *eventbus.Subscription) {
	defer b.wg.Done()
	defer sub.Unsubscribe()

	subject := b.subjectFor(sub.Topic())
	for {
		select {
		case <-b.shutdown:
			return
		default:
		}

		event, err := sub.Next(ctx)
		if err != nil {
			return
		}

		data, err := json.Marshal(event.Payload)
		if err != nil {
			b.errorCount.Add(1)
			continue
		}
		if err := b.conn.Publish(subject, data); err != nil {
			b.errorCount.Add(1)
			b.logger.Debug("nats publish failed", "subject", subject, "error", err)
			continue
		}
		b.forwarded.Add(1)
		if b.metrics != nil {
			b.metrics.RecordEventPublished(subject)
		}
	}
}

func (b *Bridge) subjectFor(topic string) string {
	if b.config.SubjectPrefix == "" {
		return topic
	}
	return fmt.Sprintf("%s.%s", b.config.SubjectPrefix, topic)
}
