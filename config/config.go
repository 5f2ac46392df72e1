// Package config loads, validates, and provides thread-safe access to
// the engine configuration. Configuration layers in order of precedence:
// built-in defaults, a JSON file, then COGSTREAM_* environment
// overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/types"
)

// Storage backend constants.
const (
	StorageBackendMemory = "memory" // process-local, default
	StorageBackendNATS   = "nats"   // JetStream KeyValue bucket
)

// Config is the complete engine configuration.
type Config struct {
	Version    string           `json:"version"`
	Engine     EngineConfig     `json:"engine"`
	Bus        BusConfig        `json:"bus"`
	Memory     MemoryConfig     `json:"memory"`
	Aggregator AggregatorConfig `json:"aggregator"`
	Metrics    MetricsConfig    `json:"metrics"`
	WebSocket  WebSocketConfig  `json:"websocket"`
	Storage    StorageConfig    `json:"storage"`
	Bridge     BridgeConfig     `json:"bridge"`
	Logging    LoggingConfig    `json:"logging"`
}

// EngineConfig holds pipeline-level settings.
type EngineConfig struct {
	// DefaultLens is substituted for unknown or omitted lens
	// identifiers.
	DefaultLens string `json:"default_lens"`
	// GlyphPackPath points to a JSON glyph pack; empty uses the
	// built-in pack.
	GlyphPackPath string `json:"glyph_pack_path,omitempty"`
}

// BusConfig holds event bus defaults.
type BusConfig struct {
	// QueueSize is the default per-subscription queue capacity.
	QueueSize int `json:"queue_size"`
	// Policy is the default overflow policy: latest or reject-new.
	Policy string `json:"policy"`
}

// MemoryConfig holds zone memory manager settings.
type MemoryConfig struct {
	ConsolidationEnabled  bool          `json:"consolidation_enabled"`
	ConsolidationInterval time.Duration `json:"consolidation_interval"`
	ConsolidationAge      time.Duration `json:"consolidation_age"`
}

// AggregatorConfig holds metrics snapshot settings.
type AggregatorConfig struct {
	Interval time.Duration `json:"interval"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// WebSocketConfig holds the streaming output settings.
type WebSocketConfig struct {
	Enabled   bool    `json:"enabled"`
	Port      int     `json:"port"`
	Path      string  `json:"path"`
	QueueSize int     `json:"queue_size"`
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend string            `json:"backend"`
	NATS    NATSStorageConfig `json:"nats,omitempty"`
}

// NATSStorageConfig holds JetStream KV backend settings.
type NATSStorageConfig struct {
	URL     string        `json:"url"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
	TTL     time.Duration `json:"ttl,omitempty"`
}

// BridgeConfig holds NATS republishing settings.
type BridgeConfig struct {
	Enabled       bool   `json:"enabled"`
	URL           string `json:"url"`
	SubjectPrefix string `json:"subject_prefix"`
	QueueSize     int    `json:"queue_size"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Engine: EngineConfig{
			DefaultLens: string(types.LensNeurotypical),
		},
		Bus: BusConfig{
			QueueSize: 64,
			Policy:    string(eventbus.PolicyLatest),
		},
		Memory: MemoryConfig{
			ConsolidationEnabled:  false,
			ConsolidationInterval: 60 * time.Second,
			ConsolidationAge:      5 * time.Minute,
		},
		Aggregator: AggregatorConfig{
			Interval: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		WebSocket: WebSocketConfig{
			Enabled:   true,
			Port:      8081,
			Path:      "/ws",
			QueueSize: 256,
			RateLimit: 200,
			RateBurst: 50,
		},
		Storage: StorageConfig{
			Backend: StorageBackendMemory,
			NATS: NATSStorageConfig{
				URL:     "nats://localhost:4222",
				Bucket:  "cogstream-notes",
				Timeout: 5 * time.Second,
			},
		},
		Bridge: BridgeConfig{
			Enabled:       false,
			URL:           "nats://localhost:4222",
			SubjectPrefix: "cogstream",
			QueueSize:     256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, an optional JSON file,
// and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "config", "Load", "read "+path)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "parse "+path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies COGSTREAM_* environment variables on top of
// the loaded configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("COGSTREAM_DEFAULT_LENS"); val != "" {
		cfg.Engine.DefaultLens = val
	}
	if val := os.Getenv("COGSTREAM_GLYPH_PACK"); val != "" {
		cfg.Engine.GlyphPackPath = val
	}
	if val := os.Getenv("COGSTREAM_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if val := os.Getenv("COGSTREAM_WS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.WebSocket.Port = port
		}
	}
	if val := os.Getenv("COGSTREAM_AGGREGATOR_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Aggregator.Interval = d
		}
	}
	if val := os.Getenv("COGSTREAM_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("COGSTREAM_NATS_URL"); val != "" {
		cfg.Storage.NATS.URL = val
		cfg.Bridge.URL = val
	}
	if val := os.Getenv("COGSTREAM_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := types.LensID(c.Engine.DefaultLens).Validate(); err != nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("default lens %q is not a known lens", c.Engine.DefaultLens))
	}
	if c.Bus.QueueSize <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"bus queue size must be positive")
	}
	if err := eventbus.OverflowPolicy(c.Bus.Policy).Validate(); err != nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("bus policy %q is not a known overflow policy", c.Bus.Policy))
	}
	if c.Aggregator.Interval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"aggregator interval must be positive")
	}
	if c.Memory.ConsolidationEnabled {
		if c.Memory.ConsolidationInterval <= 0 || c.Memory.ConsolidationAge <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"consolidation interval and age must be positive when enabled")
		}
	}
	if c.Metrics.Enabled {
		if err := validatePort(c.Metrics.Port); err != nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("metrics port: %v", err))
		}
	}
	if c.WebSocket.Enabled {
		if err := validatePort(c.WebSocket.Port); err != nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("websocket port: %v", err))
		}
		if c.Metrics.Enabled && c.WebSocket.Port == c.Metrics.Port {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"websocket and metrics ports collide")
		}
	}
	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendNATS:
		if c.Storage.NATS.URL == "" || c.Storage.NATS.Bucket == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"nats storage requires url and bucket")
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log format %q", c.Logging.Format))
	}
	return nil
}

func validatePort(port int) error {
	if port < 1024 || port > 65535 {
		return fmt.Errorf("port %d out of range 1024-65535", port)
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// SafeConfig provides thread-safe access to configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a thread-safe config wrapper.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SafeConfig", "Update",
			"config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
