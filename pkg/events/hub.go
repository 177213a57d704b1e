package events

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

type (
	// Hub is a typed observer registry with one handler list per event
	// kind. Emit delivers to a snapshot of the handlers registered when the
	// emission began, so handlers added or removed by a handler take effect
	// from the next emission on
	Hub struct {
		handlers map[api.EventType][]*subscription
		all      []*subscription
		mu       sync.RWMutex
		sequence atomic.Int64
	}

	// Handler receives a single event
	Handler func(api.Event)

	// Unsubscribe removes a previously registered handler. Calling it more
	// than once is harmless
	Unsubscribe func()

	subscription struct {
		handler Handler
		active  atomic.Bool
	}
)

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{
		handlers: map[api.EventType][]*subscription{},
	}
}

// Subscribe registers a handler for one event kind
func (h *Hub) Subscribe(typ api.EventType, handler Handler) Unsubscribe {
	sub := newSubscription(handler)
	h.mu.Lock()
	h.handlers[typ] = append(h.handlers[typ], sub)
	h.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		h.handlers[typ] = remove(h.handlers[typ], sub)
		if len(h.handlers[typ]) == 0 {
			delete(h.handlers, typ)
		}
	}
}

// SubscribeAll registers a handler that receives every event kind. These
// handlers run after the kind-specific handlers of each emission
func (h *Hub) SubscribeAll(handler Handler) Unsubscribe {
	sub := newSubscription(handler)
	h.mu.Lock()
	h.all = append(h.all, sub)
	h.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		h.all = remove(h.all, sub)
	}
}

// Emit delivers an event with the provided payload. A panicking handler is
// logged and does not prevent delivery to the remaining handlers
func (h *Hub) Emit(typ api.EventType, data any) {
	ev := api.Event{
		Type:     typ,
		Data:     data,
		Sequence: h.sequence.Add(1),
	}

	h.mu.RLock()
	snapshot := make([]*subscription, 0, len(h.handlers[typ])+len(h.all))
	snapshot = append(snapshot, h.handlers[typ]...)
	snapshot = append(snapshot, h.all...)
	h.mu.RUnlock()

	for _, sub := range snapshot {
		sub.deliver(ev)
	}
}

// Count returns the number of handlers registered for an event kind,
// excluding handlers registered for every kind
func (h *Hub) Count(typ api.EventType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[typ])
}

// Clear removes every registered handler
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.handlers {
		for _, sub := range subs {
			sub.active.Store(false)
		}
	}
	for _, sub := range h.all {
		sub.active.Store(false)
	}
	h.handlers = map[api.EventType][]*subscription{}
	h.all = nil
}

// On registers a handler that receives the decoded payload of one event
// kind. Events whose payload is not a T are ignored
func On[T any](h *Hub, typ api.EventType, fn func(T)) Unsubscribe {
	return h.Subscribe(typ, func(ev api.Event) {
		if data, ok := ev.Data.(T); ok {
			fn(data)
		}
	})
}

func newSubscription(handler Handler) *subscription {
	sub := &subscription{handler: handler}
	sub.active.Store(true)
	return sub
}

func (s *subscription) deliver(ev api.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked",
				log.EventType(ev.Type),
				slog.Any("panic", r))
		}
	}()
	s.handler(ev)
}

func remove(subs []*subscription, sub *subscription) []*subscription {
	return slices.DeleteFunc(slices.Clone(subs), func(s *subscription) bool {
		return s == sub
	})
}
