package helpers

import (
	"slices"
	"sync"
	"time"

	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
)

// Recorder captures every event emitted on a hub, in delivery order
type Recorder struct {
	events []api.Event
	unsub  events.Unsubscribe
	mu     sync.Mutex
}

// NewTestConfig creates a configuration with millisecond timings and debug
// logging enabled
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.APIHost = "localhost"
	cfg.ProcessingTick = 5 * time.Millisecond
	cfg.ProcessingSettle = 5 * time.Millisecond
	cfg.AutoAdvance = 5 * time.Millisecond
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

// NewRecorder subscribes a recorder to every event on the hub
func NewRecorder(hub *events.Hub) *Recorder {
	r := &Recorder{}
	r.unsub = hub.SubscribeAll(func(ev api.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
	})
	return r
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []api.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Types returns the recorded event types in order
func (r *Recorder) Types() []api.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]api.EventType, len(r.events))
	for i, ev := range r.events {
		res[i] = ev.Type
	}
	return res
}

// OfType returns the recorded events of one type
func (r *Recorder) OfType(typ api.EventType) []api.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []api.Event
	for _, ev := range r.events {
		if ev.Type == typ {
			res = append(res, ev)
		}
	}
	return res
}

// Count returns how many events of one type were recorded
func (r *Recorder) Count(typ api.EventType) int {
	return len(r.OfType(typ))
}

// Reset forgets every recorded event
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Close stops recording
func (r *Recorder) Close() {
	r.unsub()
}
