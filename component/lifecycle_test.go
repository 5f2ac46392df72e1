package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateCreated:     "created",
		StateInitialized: "initialized",
		StateStarted:     "started",
		StateStopped:     "stopped",
		StateFailed:      "failed",
		State(99):        "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}
