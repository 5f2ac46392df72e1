// Package websocket provides the WebSocket streaming output. Connected
// clients receive the current metrics snapshot as their first message,
// then live bus events in arrival order until they disconnect.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/c360/cogstream/component"
	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/types"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongTimeout  = 60 * time.Second
)

// SnapshotSource supplies the metrics snapshot sent to each client on
// connect.
type SnapshotSource interface {
	Snapshot() types.MetricsSnapshot
}

// Config holds all configuration needed to construct an Output instance.
type Config struct {
	// Name is the component name; empty auto-generates one from the port.
	Name string `json:"name"`
	// Port is the WebSocket server port.
	Port int `json:"port"`
	// Path is the WebSocket endpoint path.
	Path string `json:"path"`
	// Topics are the bus topics streamed to clients.
	Topics []string `json:"topics"`
	// QueueSize bounds the server's per-topic bus subscription queue.
	QueueSize int `json:"queue_size"`
	// RateLimit caps events per second sent to each client; zero
	// disables limiting.
	RateLimit float64 `json:"rate_limit"`
	// RateBurst is the per-client burst allowance when limiting.
	RateBurst int `json:"rate_burst"`
}

// DefaultConfig returns sensible defaults for the streaming output.
func DefaultConfig() Config {
	return Config{
		Port:      8081,
		Path:      "/ws",
		Topics:    []string{types.TopicZoneTransition, types.TopicSymbolicMatch, types.TopicMetrics},
		QueueSize: 256,
		RateLimit: 200,
		RateBurst: 50,
	}
}

// clientInfo holds the state for one connected WebSocket client.
type clientInfo struct {
	conn         *websocket.Conn
	connectedAt  time.Time
	limiter      *rate.Limiter
	writeMu      sync.Mutex // serializes writes to the connection
	closed       atomic.Bool
	closeOnce    sync.Once
	messagesSent int64
}

// outputMetrics holds the Prometheus metrics for the streaming output.
type outputMetrics struct {
	clientsConnected prometheus.Gauge
	messagesSent     *prometheus.CounterVec
	messagesDropped  *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
}

func newOutputMetrics(registry *metric.MetricsRegistry, name string) (*outputMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &outputMetrics{
		clientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cogstream",
			Subsystem: "websocket",
			Name:      "clients_connected",
			Help:      "Number of currently connected streaming clients",
		}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cogstream",
			Subsystem: "websocket",
			Name:      "messages_sent_total",
			Help:      "Total messages sent to streaming clients",
		}, []string{"topic"}),
		messagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cogstream",
			Subsystem: "websocket",
			Name:      "messages_dropped_total",
			Help:      "Messages dropped by the per-client rate limiter",
		}, []string{"topic"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cogstream",
			Subsystem: "websocket",
			Name:      "errors_total",
			Help:      "Streaming output errors",
		}, []string{"error_type"}),
	}

	for metricName, collector := range map[string]prometheus.Collector{
		"clients_connected":      m.clientsConnected,
		"messages_sent_total":    m.messagesSent,
		"messages_dropped_total": m.messagesDropped,
		"errors_total":           m.errorsTotal,
	} {
		if err := registry.Register(name, metricName, collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Output is a WebSocket server that streams bus events to connected
// clients for real-time visualization of zone transitions and metrics.
type Output struct {
	name      string
	port      int
	path      string
	topics    []string
	queueSize int
	rateLimit float64
	rateBurst int

	bus       *eventbus.Bus
	snapshots SnapshotSource

	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]*clientInfo
	clientsMu sync.RWMutex

	shutdown  chan struct{}
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	wg        *sync.WaitGroup

	errorCount atomic.Int64

	metrics *outputMetrics
	logger  *slog.Logger
}

var _ component.LifecycleComponent = (*Output)(nil)
var _ component.HealthReporter = (*Output)(nil)

// Option configures an Output.
type Option func(*Output)

// WithMetricsRegistry registers the output's Prometheus metrics.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(o *Output) {
		m, err := newOutputMetrics(registry, o.name)
		if err == nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the output logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Output) { o.logger = l }
}

// NewOutput creates a streaming output over the given bus and snapshot
// source.
func NewOutput(cfg Config, bus *eventbus.Bus, snapshots SnapshotSource, opts ...Option) *Output {
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("websocket-output-%d", cfg.Port)
	}
	o := &Output{
		name:      name,
		port:      cfg.Port,
		path:      cfg.Path,
		topics:    cfg.Topics,
		queueSize: cfg.QueueSize,
		rateLimit: cfg.RateLimit,
		rateBurst: cfg.RateBurst,
		bus:       bus,
		snapshots: snapshots,
		upgrader: websocket.Upgrader{
			// Visualization clients connect from arbitrary origins.
			CheckOrigin:     func(_ *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:   make(map[*websocket.Conn]*clientInfo),
		startTime: time.Now(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the component name.
func (o *Output) Name() string { return o.name }

// Initialize validates configuration. The server is not started.
func (o *Output) Initialize() error {
	if o.port < 1024 || o.port > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Output", "Initialize",
			fmt.Sprintf("invalid port %d (out of range 1024-65535)", o.port))
	}
	if o.path == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Output", "Initialize",
			"websocket path cannot be empty")
	}
	if len(o.topics) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Output", "Initialize",
			"at least one bus topic required")
	}
	if o.queueSize <= 0 {
		o.queueSize = DefaultConfig().QueueSize
	}
	return nil
}

// Start begins the WebSocket server and the topic pump goroutines.
func (o *Output) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "Output", "Start", "context already canceled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc(o.path, o.handleWebSocket)
	o.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", o.port),
		Handler: mux,
	}

	o.shutdown = make(chan struct{})
	o.wg = &sync.WaitGroup{}

	// One subscription per topic; the pump fans events out to every
	// connected client. The latest policy keeps the pump current when
	// broadcasting falls behind.
	subs := make([]*eventbus.Subscription, 0, len(o.topics))
	for _, topic := range o.topics {
		sub, err := o.bus.Subscribe(topic,
			eventbus.WithQueueSize(o.queueSize),
			eventbus.WithPolicy(eventbus.PolicyLatest))
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return errors.Wrap(err, "Output", "Start", "subscribe to topic "+topic)
		}
		subs = append(subs, sub)
	}

	o.wg.Add(len(subs) + 2)
	for _, sub := range subs {
		go o.pumpTopic(ctx, sub)
	}
	go o.runServer()
	go o.maintainClients(ctx)

	o.running = true
	o.startTime = time.Now()
	o.logger.Info("websocket output started",
		"addr", o.server.Addr,
		"path", o.path,
		"topics", o.topics)
	return nil
}

// Stop closes client connections and shuts the server down gracefully.
func (o *Output) Stop(timeout time.Duration) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = false
	close(o.shutdown)
	server := o.server
	wg := o.wg
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	o.clientsMu.Lock()
	for conn, client := range o.clients {
		client.close()
		delete(o.clients, conn)
	}
	o.clientsMu.Unlock()

	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "Output", "Stop", "shutdown http server")
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.WrapTransient(errors.ErrConnectionTimeout, "Output", "Stop",
			"goroutines did not finish within timeout")
	}
}

// Health reports server liveness and connected client count.
func (o *Output) Health() component.HealthStatus {
	o.mu.RLock()
	running := o.running
	o.mu.RUnlock()

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(o.errorCount.Load()),
		Uptime:     time.Since(o.startTime),
	}
}

// ClientCount returns the number of connected clients.
func (o *Output) ClientCount() int {
	o.clientsMu.RLock()
	defer o.clientsMu.RUnlock()
	return len(o.clients)
}

func (o *Output) runServer() {
	defer o.wg.Done()
	if err := o.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		o.errorCount.Add(1)
		o.recordError("server")
		o.logger.Error("websocket server failed", "error", err)
	}
}

// pumpTopic drains one bus subscription and broadcasts each event to all
// connected clients.
func (o *Output) pumpTopic(ctx context.Context, sub *eventbus.Subscription) {
	defer o.wg.Done()
	defer sub.Unsubscribe()

	for {
		select {
		case <-o.shutdown:
			return
		default:
		}

		event, err := sub.Next(ctx)
		if err != nil {
			return
		}
		o.broadcast(event)
	}
}

// maintainClients pings clients periodically and reaps dead connections.
func (o *Output) maintainClients(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.shutdown:
			return
		case <-ticker.C:
			o.pingClients()
		}
	}
}

func (o *Output) pingClients() {
	o.clientsMu.RLock()
	clients := make([]*clientInfo, 0, len(o.clients))
	for _, client := range o.clients {
		clients = append(clients, client)
	}
	o.clientsMu.RUnlock()

	for _, client := range clients {
		client.writeMu.Lock()
		err := client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
		client.writeMu.Unlock()
		if err != nil {
			o.removeClient(client.conn, "ping failed")
		}
	}
}

// handleWebSocket upgrades the connection. The first frame a client sees
// is the current metrics snapshot; every subsequent frame is a live bus
// event in arrival order.
func (o *Output) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := o.upgrader.Upgrade(w, r, nil)
	if err != nil {
		o.errorCount.Add(1)
		o.recordError("upgrade")
		return
	}

	client := &clientInfo{
		conn:        conn,
		connectedAt: time.Now(),
	}
	if o.rateLimit > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(o.rateLimit), o.rateBurst)
	}

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	if err := o.sendSnapshot(client); err != nil {
		o.logger.Warn("initial snapshot send failed", "remote", r.RemoteAddr, "error", err)
		client.close()
		return
	}

	o.clientsMu.Lock()
	o.clients[conn] = client
	count := len(o.clients)
	o.clientsMu.Unlock()

	if o.metrics != nil {
		o.metrics.clientsConnected.Set(float64(count))
	}
	o.logger.Info("streaming client connected", "remote", r.RemoteAddr, "clients", count)

	// Reader loop: clients send nothing meaningful; this consumes
	// control frames and detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				o.removeClient(conn, "client disconnected")
				return
			}
		}
	}()
}

// sendSnapshot delivers the connect-time metrics snapshot, framed the
// same way as the periodic cognitive.metrics events.
func (o *Output) sendSnapshot(client *clientInfo) error {
	snapshot := o.snapshots.Snapshot()
	event := types.NewMetricsEvent(snapshot)
	return o.writeEvent(client, event)
}

// broadcast sends an event to every connected client.
func (o *Output) broadcast(event types.Event) {
	o.clientsMu.RLock()
	clients := make([]*clientInfo, 0, len(o.clients))
	for _, client := range o.clients {
		clients = append(clients, client)
	}
	o.clientsMu.RUnlock()

	for _, client := range clients {
		if client.limiter != nil && !client.limiter.Allow() {
			if o.metrics != nil {
				o.metrics.messagesDropped.WithLabelValues(event.Topic).Inc()
			}
			continue
		}
		if err := o.writeEvent(client, event); err != nil {
			o.removeClient(client.conn, "write failed")
			continue
		}
		if o.metrics != nil {
			o.metrics.messagesSent.WithLabelValues(event.Topic).Inc()
		}
	}
}

func (o *Output) writeEvent(client *clientInfo, event types.Event) error {
	if client.closed.Load() {
		return errors.Wrap(errors.ErrSubscriberGone, "Output", "writeEvent", "client closed")
	}

	data, err := json.Marshal(event.Payload)
	if err != nil {
		return errors.WrapInvalid(err, "Output", "writeEvent", "marshal event payload")
	}

	client.writeMu.Lock()
	defer client.writeMu.Unlock()

	_ = client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.WrapTransient(err, "Output", "writeEvent", "write to client")
	}
	atomic.AddInt64(&client.messagesSent, 1)
	return nil
}

func (o *Output) removeClient(conn *websocket.Conn, reason string) {
	o.clientsMu.Lock()
	client, exists := o.clients[conn]
	if exists {
		delete(o.clients, conn)
	}
	count := len(o.clients)
	o.clientsMu.Unlock()

	if !exists {
		return
	}
	client.close()
	if o.metrics != nil {
		o.metrics.clientsConnected.Set(float64(count))
	}
	o.logger.Info("streaming client removed", "reason", reason, "clients", count)
}

func (o *Output) recordError(errorType string) {
	if o.metrics != nil {
		o.metrics.errorsTotal.WithLabelValues(errorType).Inc()
	}
}

func (c *clientInfo) close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		_ = c.conn.Close()
	})
}
