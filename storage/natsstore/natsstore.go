// Package natsstore persists notes in a NATS JetStream KeyValue bucket,
// the backend for multi-node deployments where persisted notes must
// survive process restarts.
package natsstore

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/storage"
	"github.com/c360/cogstream/types"
)

// Config holds the JetStream KV backend settings.
type Config struct {
	// URL is the NATS server address.
	URL string `json:"url"`
	// Bucket is the KeyValue bucket name.
	Bucket string `json:"bucket"`
	// Timeout bounds each KV operation.
	Timeout time.Duration `json:"timeout"`
	// TTL expires persisted notes; zero keeps them forever.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns KV backend settings for a local NATS server.
func DefaultConfig() Config {
	return Config{
		URL:     nats.DefaultURL,
		Bucket:  "cogstream-notes",
		Timeout: 5 * time.Second,
	}
}

// Validate checks config consistency.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "nats url required")
	}
	if c.Bucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "bucket name required")
	}
	return nil
}

// Store persists notes in a JetStream KeyValue bucket. Keys are
// zone-prefixed ("<zone>.<id>") so zone listings are prefix filters.
type Store struct {
	conn    *nats.Conn
	kv      jetstream.KeyValue
	timeout time.Duration
	ownConn bool
}

// New connects to NATS and binds the configured bucket, creating it when
// absent.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conn, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "natsstore", "New", "connect to "+cfg.URL)
	}

	store, err := NewWithConn(ctx, conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	store.ownConn = true
	return store, nil
}

// NewWithConn binds the bucket over an existing connection. The caller
// retains ownership of the connection.
func NewWithConn(ctx context.Context, conn *nats.Conn, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, errors.WrapFatal(err, "natsstore", "NewWithConn", "create jetstream context")
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "classified note records",
		Storage:     jetstream.FileStorage,
		TTL:         cfg.TTL,
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "natsstore", "NewWithConn", "bind bucket "+cfg.Bucket)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Store{conn: conn, kv: kv, timeout: timeout}, nil
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Persist writes the note record to the bucket. Connection loss is
// fatal; slower failures (timeouts, server errors) are transient.
func (s *Store) Persist(ctx context.Context, note types.Note) error {
	data, err := storage.EncodeNote(note)
	if err != nil {
		return errors.WrapInvalid(err, "natsstore", "Persist", "encode note "+note.ID)
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if _, err := s.kv.Put(ctx, storage.NoteKey(note.Zone, note.ID), data); err != nil {
		if !s.conn.IsConnected() {
			return errors.WrapFatal(errors.ErrStorageUnavailable, "natsstore", "Persist",
				"nats connection down")
		}
		return errors.WrapTransient(err, "natsstore", "Persist", "put note "+note.ID)
	}
	return nil
}

// Fetch retrieves a persisted note by ID, scanning zone prefixes.
func (s *Store) Fetch(ctx context.Context, id string) (types.Note, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	for _, zone := range types.Zones() {
		entry, err := s.kv.Get(ctx, storage.NoteKey(zone, id))
		if err != nil {
			if stderrors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return types.Note{}, errors.WrapTransient(err, "natsstore", "Fetch", "get note "+id)
		}
		return storage.DecodeNote(entry.Value())
	}
	return types.Note{}, errors.Wrap(errors.ErrNoteNotFound, "natsstore", "Fetch", "note "+id)
}

// List returns the IDs of persisted notes in a zone.
func (s *Store) List(ctx context.Context, zone types.Zone) ([]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, errors.WrapTransient(err, "natsstore", "List", "list keys")
	}

	prefix := string(zone) + "."
	var ids []string
	for key := range lister.Keys() {
		if strings.HasPrefix(key, prefix) {
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
	}
	return ids, nil
}

// Close drains the connection when this store owns it.
func (s *Store) Close() error {
	if s.ownConn && s.conn != nil {
		s.conn.Close()
	}
	return nil
}
