package events_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
)

func TestSubscribeAndEmit(t *testing.T) {
	hub := events.NewHub()

	var got []api.Event
	hub.Subscribe(api.EventFlowStarted, func(ev api.Event) {
		got = append(got, ev)
	})

	hub.Emit(api.EventFlowStarted, api.FlowStartedEvent{FlowID: "booking"})
	hub.Emit(api.EventFlowCancelled, api.FlowCancelledEvent{FlowID: "x"})

	assert.Len(t, got, 1)
	assert.Equal(t, api.EventFlowStarted, got[0].Type)
	data, ok := got[0].Data.(api.FlowStartedEvent)
	assert.True(t, ok)
	assert.Equal(t, api.FlowID("booking"), data.FlowID)
}

func TestHandlerOrder(t *testing.T) {
	hub := events.NewHub()

	var order []string
	hub.SubscribeAll(func(api.Event) { order = append(order, "all") })
	hub.Subscribe(api.EventEntryAdded, func(api.Event) {
		order = append(order, "first")
	})
	hub.Subscribe(api.EventEntryAdded, func(api.Event) {
		order = append(order, "second")
	})

	hub.Emit(api.EventEntryAdded, nil)
	assert.Equal(t, []string{"first", "second", "all"}, order)
}

func TestSequenceIncreases(t *testing.T) {
	hub := events.NewHub()

	var seqs []int64
	hub.SubscribeAll(func(ev api.Event) { seqs = append(seqs, ev.Sequence) })

	hub.Emit(api.EventFlowStarted, nil)
	hub.Emit(api.EventStepChanged, nil)
	hub.Emit(api.EventFlowCompleted, nil)

	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestUnsubscribe(t *testing.T) {
	hub := events.NewHub()

	count := 0
	unsub := hub.Subscribe(api.EventStepChanged, func(api.Event) { count++ })
	assert.Equal(t, 1, hub.Count(api.EventStepChanged))

	hub.Emit(api.EventStepChanged, nil)
	unsub()
	unsub()
	hub.Emit(api.EventStepChanged, nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, hub.Count(api.EventStepChanged))
}

func TestEmitUsesSnapshot(t *testing.T) {
	hub := events.NewHub()

	late := 0
	hub.Subscribe(api.EventEntryAdded, func(api.Event) {
		hub.Subscribe(api.EventEntryAdded, func(api.Event) { late++ })
	})

	hub.Emit(api.EventEntryAdded, nil)
	assert.Equal(t, 0, late)

	hub.Emit(api.EventEntryAdded, nil)
	assert.Equal(t, 1, late)
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	hub := events.NewHub()

	calls := 0
	var unsub events.Unsubscribe
	unsub = hub.Subscribe(api.EventEntryUpdated, func(api.Event) {
		calls++
		unsub()
	})
	hub.Subscribe(api.EventEntryUpdated, func(api.Event) { calls++ })

	hub.Emit(api.EventEntryUpdated, nil)
	hub.Emit(api.EventEntryUpdated, nil)
	assert.Equal(t, 3, calls)
}

func TestPanickingHandler(t *testing.T) {
	hub := events.NewHub()

	reached := false
	hub.Subscribe(api.EventActionTriggered, func(api.Event) {
		panic("boom")
	})
	hub.Subscribe(api.EventActionTriggered, func(api.Event) {
		reached = true
	})

	assert.NotPanics(t, func() {
		hub.Emit(api.EventActionTriggered, nil)
	})
	assert.True(t, reached)
}

func TestClear(t *testing.T) {
	hub := events.NewHub()

	count := 0
	hub.Subscribe(api.EventFlowStarted, func(api.Event) { count++ })
	hub.SubscribeAll(func(api.Event) { count++ })

	hub.Clear()
	hub.Emit(api.EventFlowStarted, nil)

	assert.Equal(t, 0, count)
	assert.Equal(t, 0, hub.Count(api.EventFlowStarted))
}

func TestOn(t *testing.T) {
	hub := events.NewHub()

	var ids []api.FlowID
	events.On(hub, api.EventFlowCompleted,
		func(ev api.FlowCompletedEvent) {
			ids = append(ids, ev.FlowID)
		},
	)

	hub.Emit(api.EventFlowCompleted, api.FlowCompletedEvent{FlowID: "claim"})
	hub.Emit(api.EventFlowCompleted, "not a payload")

	assert.Equal(t, []api.FlowID{"claim"}, ids)
}

func TestConcurrentEmit(t *testing.T) {
	hub := events.NewHub()

	var mu sync.Mutex
	count := 0
	hub.SubscribeAll(func(api.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			for range 10 {
				hub.Emit(api.EventEntryAdded, nil)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 100, count)
}
