// Package event provides the synchronous observer bus the reasoner
// reports progress and telemetry on.
//
// Delivery is synchronous and in registration order. For cross-process
// distribution, the graph and processor packages bridge selected events
// onto NATS; this bus stays in-process.
package event

import (
	"log/slog"
	"sync"
)

// Topics emitted by the inference engine and the neighborhood explorer.
const (
	TopicInferenceComputed = "inference.computed"
	TopicInferenceCleared  = "inference.cleared"
	TopicExploreStart      = "neighborhood.explore-start"
	TopicExploreComplete   = "neighborhood.explore-complete"
	TopicExploreError      = "neighborhood.explore-error"
	TopicHopExpand         = "neighborhood.hop-expand"
)

// Event is a topic plus an arbitrary payload. Payloads are the typed
// structs published by the emitting package (inference.ComputedEvent,
// neighborhood.HopEvent, ...).
type Event struct {
	Topic   string
	Payload any
}

// Handler receives events for a subscribed topic.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus dispatches events to subscribers. Subscribing and publishing are
// safe for concurrent use; handlers themselves run on the publisher's
// goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
	logger *slog.Logger
}

// NewBus returns an empty bus. A nil logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers a handler for a topic and returns an id usable
// with Unsubscribe.
func (b *Bus) Subscribe(topic string, h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscription{id: b.nextID, handler: h})
	return b.nextID
}

// Unsubscribe removes a handler by subscription id. Unknown ids are a
// no-op.
func (b *Bus) Unsubscribe(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, sub := range subs {
		if sub.id == id {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every subscriber of its topic, in
// registration order. A panicking handler is recovered and logged so it
// cannot abort delivery to later handlers.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	evt := Event{Topic: topic, Payload: payload}
	for _, sub := range subs {
		b.deliver(sub, evt)
	}
}

func (b *Bus) deliver(sub subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Event handler panicked",
				slog.String("topic", evt.Topic),
				slog.Any("panic", r))
		}
	}()
	sub.handler(evt)
}
