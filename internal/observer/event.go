// Package observer broadcasts coarsened supervisor state changes to registry
// observers and other interested subscribers (admin UI, websocket clients).
package observer

import (
	"time"

	"github.com/google/uuid"
)

// Event is a single observable change pushed by a supervisor.
type Event struct {
	// Type is the event kind, one of the EventType* constants.
	Type string `json:"type"`

	// ID is a unique event ID.
	ID string `json:"id"`

	// ServerID is the id of the server whose supervisor produced this event.
	ServerID string `json:"serverId"`

	// State is the coarsened external state after the transition (see
	// supervisor.ExternalState). Empty for events that are not state changes.
	State string `json:"state,omitempty"`

	// PreviousState is the coarsened external state before the transition.
	PreviousState string `json:"previousState,omitempty"`

	// Pid is the managed process id, when known and the server is active.
	Pid int `json:"pid,omitempty"`

	// Reason carries a human-readable explanation for failures (activation
	// timeout, process death, disable-on-failure, ...).
	Reason string `json:"reason,omitempty"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Source identifies the subsystem that produced the event.
	Source string `json:"source"`

	// Sequence is a monotonically increasing ordering number, assigned by the bus.
	Sequence int64 `json:"sequence"`
}

// Event type constants.
const (
	EventTypeStateChanged  = "state_changed"
	EventTypeServerAdded   = "server_added"
	EventTypeServerRemoved = "server_removed"
	EventTypeDisabled      = "server_disabled"
	EventTypeEnabled       = "server_enabled"
)

// Event source constants.
const (
	EventSourceSupervisor = "supervisor"
	EventSourceScheduler  = "scheduler"
)

// NewEvent creates an Event of the given type for serverID, stamped with a
// fresh ID and the current time. Sequence is assigned later by the bus.
func NewEvent(eventType, serverID, source string) *Event {
	return &Event{
		Type:      eventType,
		ID:        uuid.New().String(),
		ServerID:  serverID,
		Timestamp: time.Now(),
		Source:    source,
	}
}
