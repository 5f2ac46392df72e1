package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/types"
)

type staticSnapshots struct {
	snapshot types.MetricsSnapshot
}

func (s staticSnapshots) Snapshot() types.MetricsSnapshot { return s.snapshot }

func newTestOutput(t *testing.T) (*Output, *eventbus.Bus) {
	t.Helper()
	bus := eventbus.New()
	t.Cleanup(func() { _ = bus.Close() })

	cfg := DefaultConfig()
	o := NewOutput(cfg, bus, staticSnapshots{
		snapshot: types.MetricsSnapshot{
			TotalProcessed: 7,
			DefaultLens:    types.LensNeurotypical,
		},
	})
	require.NoError(t, o.Initialize())
	return o, bus
}

func dialTestServer(t *testing.T, o *Output) *gorilla.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(o.handleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *gorilla.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope
}

func TestFirstMessageIsMetricsSnapshot(t *testing.T) {
	o, _ := newTestOutput(t)
	conn := dialTestServer(t, o)

	envelope := readEnvelope(t, conn)
	assert.Equal(t, types.TopicMetrics, envelope["type"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	zoneMetrics, ok := data["zone_metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), zoneMetrics["total_processed"])
}

func TestEventsFollowSnapshotInOrder(t *testing.T) {
	o, _ := newTestOutput(t)
	conn := dialTestServer(t, o)

	// Consume the connect-time snapshot.
	first := readEnvelope(t, conn)
	require.Equal(t, types.TopicMetrics, first["type"])

	require.Eventually(t, func() bool { return o.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	noteA := types.NewNote("first", types.ZoneActive, 0.9, types.LensNeurotypical, types.SymbolicMetadata{})
	noteB := types.NewNote("second", types.ZoneCrystal, 0.1, types.LensNeurotypical, types.SymbolicMetadata{})
	o.broadcast(types.NewZoneTransitionEvent(noteA))
	o.broadcast(types.NewZoneTransitionEvent(noteB))

	envA := readEnvelope(t, conn)
	assert.Equal(t, types.TopicZoneTransition, envA["type"])
	dataA := envA["data"].(map[string]any)
	assert.Equal(t, noteA.ID, dataA["note_id"])

	envB := readEnvelope(t, conn)
	dataB := envB["data"].(map[string]any)
	assert.Equal(t, noteB.ID, dataB["note_id"])
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	o, _ := newTestOutput(t)
	conn := dialTestServer(t, o)

	readEnvelope(t, conn) // snapshot
	require.Eventually(t, func() bool { return o.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return o.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestInitializeValidation(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	snaps := staticSnapshots{}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.Port = 80 }},
		{"empty path", func(c *Config) { c.Path = "" }},
		{"no topics", func(c *Config) { c.Topics = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			o := NewOutput(cfg, bus, snaps)
			assert.Error(t, o.Initialize())
		})
	}
}

func TestRateLimiterDropsExcessEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	cfg := DefaultConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	o := NewOutput(cfg, bus, staticSnapshots{})
	require.NoError(t, o.Initialize())

	conn := dialTestServer(t, o)
	readEnvelope(t, conn) // snapshot
	require.Eventually(t, func() bool { return o.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	note := types.NewNote("burst", types.ZoneActive, 0.9, types.LensNeurotypical, types.SymbolicMetadata{})
	for i := 0; i < 10; i++ {
		o.broadcast(types.NewZoneTransitionEvent(note))
	}

	// Burst of 1: exactly one event passes the limiter.
	readEnvelope(t, conn)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "subsequent events were rate-limited away")
}
