// Package engine assembles the classification pipeline from
// configuration and manages its lifecycle: classifier, lenses, glyph
// processor, zone memory, bus, aggregator, storage backend, and the
// streaming outputs.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/cogstream/aggregator"
	"github.com/c360/cogstream/component"
	"github.com/c360/cogstream/config"
	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/glyph"
	"github.com/c360/cogstream/health"
	"github.com/c360/cogstream/lens"
	"github.com/c360/cogstream/memory"
	"github.com/c360/cogstream/metric"
	"github.com/c360/cogstream/orchestrator"
	"github.com/c360/cogstream/output/natsbridge"
	"github.com/c360/cogstream/output/websocket"
	"github.com/c360/cogstream/storage"
	"github.com/c360/cogstream/storage/memstore"
	"github.com/c360/cogstream/storage/natsstore"
	"github.com/c360/cogstream/types"
)

const stopTimeout = 10 * time.Second

// Engine is the composition root. It owns every pipeline part and
// coordinates startup, background loops, and reverse-order shutdown.
type Engine struct {
	cfg *config.Config

	registry *metric.MetricsRegistry
	metrics  *metric.Metrics

	bus          *eventbus.Bus
	manager      *memory.Manager
	orchestrator *orchestrator.Orchestrator
	aggregator   *aggregator.Aggregator
	store        storage.Store

	metricsServer *metric.Server
	monitor       *health.Monitor

	// components holds lifecycle-managed parts in start order
	components []component.Managed

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	logger *slog.Logger
}

// New builds an engine from configuration. No goroutines start until
// Start is called.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()

	bus := eventbus.New(
		eventbus.WithDefaultQueueSize(cfg.Bus.QueueSize),
		eventbus.WithDefaultPolicy(eventbus.OverflowPolicy(cfg.Bus.Policy)),
		eventbus.WithMetrics(metrics),
		eventbus.WithLogger(logger.With("component", "eventbus")),
	)

	manager, err := memory.NewManager(memory.Config{
		ConsolidationEnabled:  cfg.Memory.ConsolidationEnabled,
		ConsolidationInterval: cfg.Memory.ConsolidationInterval,
		ConsolidationAge:      cfg.Memory.ConsolidationAge,
	},
		memory.WithMetrics(metrics),
		memory.WithLogger(logger.With("component", "memory")),
	)
	if err != nil {
		return nil, err
	}

	glyphs, err := buildGlyphProcessor(cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lenses := lens.NewRegistry(types.LensID(cfg.Engine.DefaultLens))
	orch := orchestrator.New(lenses, glyphs, manager, bus,
		orchestrator.WithStore(store),
		orchestrator.WithMetrics(metrics),
		orchestrator.WithLogger(logger.With("component", "orchestrator")),
	)

	agg, err := aggregator.New(manager, orch, bus,
		aggregator.WithInterval(cfg.Aggregator.Interval),
		aggregator.WithMetrics(metrics),
		aggregator.WithLogger(logger.With("component", "aggregator")),
	)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:          cfg,
		registry:     registry,
		metrics:      metrics,
		bus:          bus,
		manager:      manager,
		orchestrator: orch,
		aggregator:   agg,
		store:        store,
		monitor:      health.NewMonitor(),
		logger:       logger,
	}

	if cfg.WebSocket.Enabled {
		ws := websocket.NewOutput(websocket.Config{
			Port:      cfg.WebSocket.Port,
			Path:      cfg.WebSocket.Path,
			Topics:    []string{types.TopicZoneTransition, types.TopicSymbolicMatch, types.TopicMetrics},
			QueueSize: cfg.WebSocket.QueueSize,
			RateLimit: cfg.WebSocket.RateLimit,
			RateBurst: cfg.WebSocket.RateBurst,
		}, bus, agg,
			websocket.WithMetricsRegistry(registry),
			websocket.WithLogger(logger.With("component", "websocket")),
		)
		e.components = append(e.components, component.Managed{Component: ws})
	}

	if cfg.Bridge.Enabled {
		bridge := natsbridge.New(natsbridge.Config{
			URL:           cfg.Bridge.URL,
			SubjectPrefix: cfg.Bridge.SubjectPrefix,
			Topics:        []string{types.TopicZoneTransition, types.TopicSymbolicMatch, types.TopicMetrics},
			QueueSize:     cfg.Bridge.QueueSize,
		}, bus,
			natsbridge.WithMetrics(metrics),
			natsbridge.WithLogger(logger.With("component", "natsbridge")),
		)
		e.components = append(e.components, component.Managed{Component: bridge})
	}

	if cfg.Metrics.Enabled {
		e.metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		e.metricsServer.SetHealthCheck(func() bool {
			return e.monitor.AggregateHealth("cogstream").Healthy
		})
	}

	return e, nil
}

func buildGlyphProcessor(cfg *config.Config) (glyph.Processor, error) {
	if cfg.Engine.GlyphPackPath == "" {
		return glyph.NewDefaultProcessor(), nil
	}
	pack, err := glyph.LoadPack(cfg.Engine.GlyphPackPath)
	if err != nil {
		return nil, err
	}
	return glyph.NewSeedProcessor(pack), nil
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		return memstore.New(), nil
	case config.StorageBackendNATS:
		return natsstore.New(ctx, natsstore.Config{
			URL:     cfg.Storage.NATS.URL,
			Bucket:  cfg.Storage.NATS.Bucket,
			Timeout: cfg.Storage.NATS.Timeout,
			TTL:     cfg.Storage.NATS.TTL,
		})
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Engine", "buildStore",
			"unknown storage backend "+cfg.Storage.Backend)
	}
}

// Process runs one text through the pipeline. Safe for concurrent use.
func (e *Engine) Process(ctx context.Context, text string, lensID types.LensID) (orchestrator.ProcessingResult, error) {
	return e.orchestrator.Process(ctx, text, lensID)
}

// Bus exposes the event bus for in-process subscribers.
func (e *Engine) Bus() *eventbus.Bus { return e.bus }

// Snapshot returns the current metrics snapshot.
func (e *Engine) Snapshot() types.MetricsSnapshot { return e.aggregator.Snapshot() }

// Health returns the aggregated engine health.
func (e *Engine) Health() health.Status { return e.monitor.AggregateHealth("cogstream") }

// Start launches the background loops and lifecycle components in
// order: metrics endpoint, outputs, aggregator, consolidation.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return errors.Wrap(errors.ErrAlreadyStarted, "Engine", "Start", "engine running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	e.cancel = cancel
	e.group = group

	if e.metricsServer != nil {
		group.Go(func() error {
			if err := e.metricsServer.Start(); err != nil {
				e.monitor.UpdateUnhealthy("metrics", err.Error())
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			return e.metricsServer.Stop()
		})
		e.monitor.UpdateHealthy("metrics", "serving")
	}

	for i := range e.components {
		mc := &e.components[i]
		name := mc.Component.Name()

		if err := mc.Component.Initialize(); err != nil {
			mc.State = component.StateFailed
			mc.LastError = err
			cancel()
			e.stopStarted()
			_ = group.Wait()
			return errors.Wrap(err, "Engine", "Start", "initialize "+name)
		}
		mc.State = component.StateInitialized

		mc.Context, mc.Cancel = context.WithCancel(groupCtx)
		if err := mc.Component.Start(mc.Context); err != nil {
			mc.State = component.StateFailed
			mc.LastError = err
			cancel()
			e.stopStarted()
			_ = group.Wait()
			return errors.Wrap(err, "Engine", "Start", "start "+name)
		}
		mc.State = component.StateStarted
		mc.StartOrder = i
		e.monitor.UpdateHealthy(name, "started")
	}

	group.Go(func() error {
		err := e.aggregator.Run(groupCtx)
		if err != nil && groupCtx.Err() == nil {
			e.monitor.UpdateUnhealthy("aggregator", err.Error())
			return err
		}
		return nil
	})
	e.monitor.UpdateHealthy("aggregator", "running")

	if e.cfg.Memory.ConsolidationEnabled {
		group.Go(func() error {
			err := e.manager.RunConsolidation(groupCtx)
			if err != nil && groupCtx.Err() == nil {
				return err
			}
			return nil
		})
		e.monitor.UpdateHealthy("consolidation", "running")
	}

	e.running = true
	e.logger.Info("engine started",
		"default_lens", e.cfg.Engine.DefaultLens,
		"storage", e.cfg.Storage.Backend,
		"aggregator_interval", e.cfg.Aggregator.Interval)
	return nil
}

// Stop shuts the engine down: background loops first, then lifecycle
// components in reverse start order, then the bus and storage.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false

	e.cancel()
	if err := e.group.Wait(); err != nil && err != context.Canceled {
		e.logger.Warn("background loop exited with error", "error", err)
	}

	e.stopStarted()

	if err := e.bus.Close(); err != nil {
		e.logger.Warn("bus close failed", "error", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("store close failed", "error", err)
	}

	e.logger.Info("engine stopped")
	return nil
}

// stopStarted stops lifecycle components in reverse start order.
func (e *Engine) stopStarted() {
	for i := len(e.components) - 1; i >= 0; i-- {
		mc := &e.components[i]
		if mc.State != component.StateStarted {
			continue
		}
		name := mc.Component.Name()
		if mc.Cancel != nil {
			mc.Cancel()
		}
		if err := mc.Component.Stop(stopTimeout); err != nil {
			mc.State = component.StateFailed
			mc.LastError = err
			e.monitor.UpdateUnhealthy(name, err.Error())
			e.logger.Warn("component stop failed", "component", name, "error", err)
			continue
		}
		mc.State = component.StateStopped
		e.monitor.Update(name, health.NewHealthy(name, "stopped"))
	}
}
