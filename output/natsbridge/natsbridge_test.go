package natsbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/cogstream/eventbus"
	"github.com/c360/cogstream/types"
)

func TestInitializeValidation(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	cfg := DefaultConfig()
	cfg.URL = ""
	assert.Error(t, New(cfg, bus).Initialize())

	cfg = DefaultConfig()
	cfg.Topics = nil
	assert.Error(t, New(cfg, bus).Initialize())

	cfg = DefaultConfig()
	cfg.QueueSize = 0
	b := New(cfg, bus)
	require.NoError(t, b.Initialize())
	assert.Equal(t, DefaultConfig().QueueSize, b.config.QueueSize,
		"zero queue size falls back to the default")
}

func TestSubjectMapping(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	b := New(DefaultConfig(), bus)
	assert.Equal(t, "cogstream.cognitive.zone_transition",
		b.subjectFor(types.TopicZoneTransition))

	cfg := DefaultConfig()
	cfg.SubjectPrefix = ""
	b = New(cfg, bus)
	assert.Equal(t, types.TopicMetrics, b.subjectFor(types.TopicMetrics))
}

func TestStopWithoutStart(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	b := New(DefaultConfig(), bus)
	assert.NoError(t, b.Stop(0))
}
