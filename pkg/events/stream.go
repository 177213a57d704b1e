package events

import (
	"sync"
	"sync/atomic"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

// Stream republishes every event emitted by a Hub onto a topic, so that
// slow or remote listeners can consume at their own pace without holding
// up the emitter. A consumer only sees events emitted after it was created
type Stream struct {
	topic       topic.Topic[api.Event]
	prod        topic.Producer[api.Event]
	unsubscribe Unsubscribe
	closed      atomic.Bool
	closeOnce   sync.Once
}

// NewStream attaches a Stream to the provided Hub
func NewStream(hub *Hub) *Stream {
	t := caravan.NewTopic[api.Event]()
	s := &Stream{
		topic: t,
		prod:  t.NewProducer(),
	}
	s.unsubscribe = hub.SubscribeAll(func(ev api.Event) {
		if !s.closed.Load() {
			message.Send(s.prod, ev)
		}
	})
	return s
}

// NewConsumer creates a consumer positioned at the next event. Callers
// must close it when done
func (s *Stream) NewConsumer() topic.Consumer[api.Event] {
	return s.topic.NewConsumer()
}

// Close detaches the Stream from its Hub
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.unsubscribe()
		s.prod.Close()
	})
}
