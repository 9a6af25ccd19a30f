package rowship

import "time"

// State represents the lifecycle state of a Rowship instance.
type State int

const (
	// StateStopped indicates the agent is not running.
	StateStopped State = iota

	// StateStarting indicates the agent is starting up.
	StateStarting

	// StateRunning indicates the agent is shipping tables.
	StateRunning

	// StateStopping indicates the agent is shutting down.
	StateStopping

	// StateCrashed indicates the agent terminated with an error.
	StateCrashed
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// StateChangeEvent is emitted when the agent transitions between states.
type StateChangeEvent struct {
	// Previous is the state before the transition
	Previous State

	// Current is the state after the transition
	Current State

	// Reason describes what caused the transition
	Reason string
}

// SendSuccessEvent is emitted after a table was accepted by the service.
type SendSuccessEvent struct {
	// RowCount is the number of rows in the delivered table
	RowCount int

	// SizeBytes is the table's cumulative row size
	SizeBytes uint64

	// Duration is how long the successful send took
	Duration time.Duration
}

// SendErrorEvent is emitted after a failed delivery attempt.
type SendErrorEvent struct {
	// Error is the failure returned by the sink
	Error error

	// RowCount is the number of rows in the affected table
	RowCount int

	// Retryable indicates whether the agent will retry the table
	Retryable bool
}

// EventHandler receives notifications about rowship operations.
// Handlers are called synchronously from the agent's goroutines and should
// return quickly; embed BaseEventHandler for no-op defaults.
type EventHandler interface {
	// OnStateChange is called when the lifecycle state changes.
	OnStateChange(event StateChangeEvent)

	// OnSendSuccess is called after each successfully delivered table.
	OnSendSuccess(event SendSuccessEvent)

	// OnSendError is called after each failed delivery attempt.
	OnSendError(event SendErrorEvent)
}

// BaseEventHandler provides no-op implementations of every EventHandler
// method. Embed it to implement only the callbacks you care about.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(event StateChangeEvent) {}

// OnSendSuccess does nothing.
func (BaseEventHandler) OnSendSuccess(event SendSuccessEvent) {}

// OnSendError does nothing.
func (BaseEventHandler) OnSendError(event SendErrorEvent) {}
