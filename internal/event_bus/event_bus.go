package event_bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType is an identifier for bus messages.
type EventType string

// Message is the envelope carried by the bus. Payload is kept as any so one bus
// can carry every domain notification.
type Message struct {
	ctx       context.Context
	ID        uuid.UUID
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// NewMessage creates a message with a fresh id, stamped with the current time.
func NewMessage(ctx context.Context, eventType EventType, payload any) Message {
	return Message{
		ctx:       ctx,
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Context returns the context the message was published with.
func (m Message) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// MessageT is the typed view handed to SubscribeTyped handlers.
type MessageT[T any] struct {
	ctx       context.Context
	ID        uuid.UUID
	Type      EventType
	Timestamp time.Time
	Payload   T
}

func (m MessageT[T]) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

type handler func(Message) error

type subscription struct {
	id uint64
	h  handler
}

// EventBus dispatches messages synchronously, in subscription order.
// It is safe for concurrent use.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	nextID      uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]subscription),
	}
}

// Subscribe registers h for eventType and returns a function that removes it.
func (eb *EventBus) Subscribe(eventType EventType, h func(Message) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: id, h: h})
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(eb.subscribers[eventType]) == 0 {
			delete(eb.subscribers, eventType)
		}
	}
}

// SubscribeTyped registers a handler that only sees payloads of type T.
// Messages carrying another payload type are skipped.
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(MessageT[T]) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(m Message) error {
		payload, ok := m.Payload.(T)
		if !ok {
			log.Debugf("EventBus: type mismatch for %s: expected %T, got %T", eventType, *new(T), m.Payload)
			return nil
		}
		return h(MessageT[T]{
			ctx:       m.ctx,
			ID:        m.ID,
			Type:      m.Type,
			Timestamp: m.Timestamp,
			Payload:   payload,
		})
	})
}

// Publish delivers m to every handler of m.Type. Handler errors and panics are
// logged and collected; the remaining handlers still run unless the message
// context is cancelled.
func (eb *EventBus) Publish(m Message) error {
	if err := m.Context().Err(); err != nil {
		return fmt.Errorf("message %s: context cancelled before publish: %w", m.Type, err)
	}

	eb.mu.RLock()
	subs := make([]subscription, len(eb.subscribers[m.Type]))
	copy(subs, eb.subscribers[m.Type])
	eb.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := m.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during delivery: %w", err))
			break
		}

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic (ID %d) for %s: %v", s.id, m.Type, r)
				}
			}()
			return s.h(m)
		}()

		if err != nil {
			log.Errorf("EventBus: handler error (ID %d) for %s: %v", s.id, m.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("message %s: %d handler(s) failed: %v", m.Type, len(errs), errs)
	}
	return nil
}
