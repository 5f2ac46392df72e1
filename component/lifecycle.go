// Package component defines the lifecycle contract shared by the
// engine's long-running parts: the metrics server, the streaming
// outputs, the aggregator, and the consolidation loop.
package component

import (
	"context"
	"time"
)

// State represents the current lifecycle state of a component
type State int

const (
	// StateCreated indicates the component was created but not initialized
	StateCreated State = iota
	// StateInitialized indicates the component was initialized but not started
	StateInitialized
	// StateStarted indicates the component is running
	StateStarted
	// StateStopped indicates the component was stopped
	StateStopped
	// StateFailed indicates the component failed during a lifecycle operation
	StateFailed
)

// String returns a string representation of the component state
func (cs State) String() string {
	switch cs {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LifecycleComponent is the unified lifecycle pattern:
//   - Initialize() error                 // setup only, no context
//   - Start(ctx context.Context) error   // begin work, honor cancellation
//   - Stop(timeout time.Duration) error  // graceful shutdown within timeout
type LifecycleComponent interface {
	Name() string
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// Managed tracks a component and its lifecycle state. The engine creates
// a named child context per component so each can be canceled
// individually; components receive the context as a parameter and never
// store it.
type Managed struct {
	Component LifecycleComponent
	State     State

	Context context.Context
	Cancel  context.CancelFunc

	// StartOrder records start sequence for reverse-order shutdown
	StartOrder int

	LastError error
}
