package events

import (
	"time"
)

// Event is one entry in a run journal. Allocation and shortage events are
// streamed per product; the completion event is streamed under the run ID.
type Event interface {
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	// Version is the 1-based position within the stream, 0 until journaled
	Version() int
}

// EventHandler reacts to journaled events
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore is the journal contract
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
}

// Entry is the concrete event kept by the journal
type Entry struct {
	Kind     string    `json:"type"`
	Stream   string    `json:"stream"`
	Payload  any       `json:"data"`
	At       time.Time `json:"at"`
	Sequence int       `json:"version"`
}

func (e Entry) Type() string         { return e.Kind }
func (e Entry) StreamID() string     { return e.Stream }
func (e Entry) Data() any            { return e.Payload }
func (e Entry) Timestamp() time.Time { return e.At }
func (e Entry) Version() int         { return e.Sequence }

// NewEvent creates an unjournaled event
func NewEvent(eventType, streamID string, data any) Event {
	return Entry{
		Kind:    eventType,
		Stream:  streamID,
		Payload: data,
		At:      time.Now(),
	}
}

// HandlerFunc adapts a function to EventHandler for the given event types
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h HandlerFunc) CanHandle(eventType string) bool {
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
