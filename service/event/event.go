package event

import (
	"time"

	"github.com/viant/rrsim/internal/clock"
)

// Type identifies the transition an event reports
type Type string

const (
	TypeLoaded     Type = "loaded"
	TypeStarted    Type = "started"
	TypeDispatched Type = "dispatched"
	TypeTick       Type = "tick"
	TypePreempted  Type = "preempted"
	TypeFinished   Type = "finished"
	TypePaused     Type = "paused"
	TypeResumed    Type = "resumed"
	TypeCompleted  Type = "completed"
	TypeDiscarded  Type = "discarded"
)

// IsTransition returns true for events that move a record or change the run
// state; ticks only advance the slice in flight.
func (t Type) IsTransition() bool {
	return t != TypeTick
}

// Context identifies where an event originated
type Context struct {
	BatchID   string `json:"batchID"`
	EventType Type   `json:"eventType"`
	PID       *int   `json:"pid,omitempty"`
	Clock     int    `json:"clock"`
	// Seq grows with every published event of an engine; a lower Seq than
	// one already seen marks a stale snapshot.
	Seq uint64 `json:"seq"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// Type returns the event type or "" when the context is missing
func (e *Event[T]) Type() Type {
	if e == nil || e.Context == nil {
		return ""
	}
	return e.Context.EventType
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
