package wait

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

type (
	Wait struct {
		t        *testing.T
		consumer topic.Consumer[api.Event]
		timeout  time.Duration
	}

	Predicate[T any] func(T) bool

	EventFilter Predicate[api.Event]
)

const DefaultTimeout = time.Second * 5

func On(t *testing.T, consumer topic.Consumer[api.Event]) *Wait {
	return &Wait{
		t:        t,
		consumer: consumer,
		timeout:  DefaultTimeout,
	}
}

func (w *Wait) WithTimeout(timeout time.Duration) *Wait {
	res := *w
	res.timeout = timeout
	return &res
}

// ForEvents waits for matching events from the consumer and returns them
func (w *Wait) ForEvents(count int, filter EventFilter) []api.Event {
	w.t.Helper()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	var res []api.Event
	for len(res) < count {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				w.t.Fatalf(
					"event consumer closed before receiving %d events", count,
				)
			}
			if filter(ev) {
				res = append(res, ev)
			}
		case <-deadline.C:
			w.t.Fatalf("timeout waiting for %d events", count)
		}
	}
	return res
}

// ForEvent waits for a single matching event
func (w *Wait) ForEvent(filter EventFilter) api.Event {
	w.t.Helper()
	return w.ForEvents(1, filter)[0]
}

// And composes event filters and returns true when all match
func And(filters ...EventFilter) EventFilter {
	return func(ev api.Event) bool {
		for _, filter := range filters {
			if !filter(ev) {
				return false
			}
		}
		return true
	}
}

// Type creates a filter for a single event type
func Type(eventType api.EventType) EventFilter {
	return Types(eventType)
}

// Types creates a filter for the given event types
func Types(eventTypes ...api.EventType) EventFilter {
	lookup := util.SetOf(eventTypes...)
	return func(ev api.Event) bool {
		return lookup.Contains(ev.Type)
	}
}

// FlowStarted matches flow started events for the provided flow
func FlowStarted(id api.FlowID) EventFilter {
	return Payload(func(data api.FlowStartedEvent) bool {
		return data.FlowID == id
	})
}

// FlowCompleted matches flow completed events for the provided flow
func FlowCompleted(id api.FlowID) EventFilter {
	return Payload(func(data api.FlowCompletedEvent) bool {
		return data.FlowID == id
	})
}

// FlowCancelled matches flow cancelled events for the provided flow
func FlowCancelled(id api.FlowID) EventFilter {
	return Payload(func(data api.FlowCancelledEvent) bool {
		return data.FlowID == id
	})
}

// EntryAdded matches added entries rendering the given step
func EntryAdded(step api.StepID) EventFilter {
	return Payload(func(data api.EntryAddedEvent) bool {
		return data.Entry != nil && data.Entry.StepID == step
	})
}

// ProcessingCompleted matches the end of any processing sequence
func ProcessingCompleted() EventFilter {
	return Type(api.EventProcessingCompleted)
}

// Payload creates a filter that matches events carrying a T payload that
// satisfies pred
func Payload[T any](pred Predicate[T]) EventFilter {
	return func(ev api.Event) bool {
		data, ok := ev.Data.(T)
		return ok && pred(data)
	}
}
