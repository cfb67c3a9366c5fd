package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in a run
type EventType string

const (
	EventTypeTicketChecked   EventType = "ticket_checked"
	EventTypeTicketPurchased EventType = "ticket_purchased"
	EventTypeRunFailed       EventType = "run_failed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TicketCheckedEvent is emitted once a ticket has been labelled with its results
type TicketCheckedEvent struct {
	TicketID int64
	Round    int
	Labels   []string
	Won      bool
}

func (e TicketCheckedEvent) Type() EventType {
	return EventTypeTicketChecked
}

// TicketPurchasedEvent is emitted after a purchased batch was recorded in the store
type TicketPurchasedEvent struct {
	Date         string
	Round        int
	Combinations int
	Link         string
}

func (e TicketPurchasedEvent) Type() EventType {
	return EventTypeTicketPurchased
}

// RunFailedEvent is emitted when a run ends with an error
type RunFailedEvent struct {
	RunID   string
	Message string
}

func (e RunFailedEvent) Type() EventType {
	return EventTypeRunFailed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run asynchronously;
// call Wait before exiting to let them finish.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started by Emit has returned
func (b *Bus) Wait() {
	b.inflight.Wait()
}
