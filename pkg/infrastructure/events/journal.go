package events

import (
	"errors"
	"fmt"
)

// ErrInvalidSubscription is returned when a handler could never be called
// for the event types it subscribes to.
var ErrInvalidSubscription = errors.New("invalid subscription")

// Journal is an in-memory EventStore scoped to a single run. Appends and
// handler calls happen synchronously on the caller's goroutine, so handlers
// observe events in exactly the order they were recorded.
type Journal struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	allEvents   []Event
}

func NewJournal() *Journal {
	return &Journal{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
	}
}

var _ EventStore = (*Journal)(nil)

func (j *Journal) AppendEvent(streamID string, event Event) error {
	versioned := Entry{
		Kind:     event.Type(),
		Stream:   streamID,
		Payload:  event.Data(),
		At:       event.Timestamp(),
		Sequence: len(j.streams[streamID]) + 1,
	}

	j.streams[streamID] = append(j.streams[streamID], versioned)
	j.allEvents = append(j.allEvents, versioned)

	return j.notifySubscribers(versioned)
}

// Record appends an event to its own stream
func (j *Journal) Record(event Event) error {
	return j.AppendEvent(event.StreamID(), event)
}

func (j *Journal) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	events, exists := j.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return events[fromVersion-1:], nil
}

func (j *Journal) ReadAllEvents(fromPosition int) ([]Event, error) {
	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(j.allEvents) {
		return []Event{}, nil
	}

	return j.allEvents[fromPosition:], nil
}

func (j *Journal) Subscribe(eventTypes []string, handler EventHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: nil handler", ErrInvalidSubscription)
	}
	if len(eventTypes) == 0 {
		return fmt.Errorf("%w: no event types", ErrInvalidSubscription)
	}
	for _, eventType := range eventTypes {
		if !handler.CanHandle(eventType) {
			return fmt.Errorf("%w: handler does not accept %s", ErrInvalidSubscription, eventType)
		}
	}
	for _, eventType := range eventTypes {
		j.subscribers[eventType] = append(j.subscribers[eventType], handler)
	}
	return nil
}

func (j *Journal) notifySubscribers(event Event) error {
	for _, handler := range j.subscribers[event.Type()] {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			return fmt.Errorf("handling event %s: %w", event.Type(), err)
		}
	}
	return nil
}
