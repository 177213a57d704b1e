package engine

import (
	"strconv"
	"time"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

const (
	taskTick    = "tick"
	taskSettle  = "settle"
	taskAdvance = "advance"
)

func (e *Engine) lock() {
	e.mu.Lock()
}

// unlock releases the engine lock and then runs the queued effects in
// order. Effects queued by subscribers while the queue drains are run by
// the same loop
func (e *Engine) unlock() {
	if e.flushing {
		e.mu.Unlock()
		return
	}
	e.flushing = true
	for len(e.outbox) > 0 {
		batch := e.outbox
		e.outbox = nil
		e.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
		e.mu.Lock()
	}
	e.flushing = false
	e.mu.Unlock()
}

func (e *Engine) after(fn func()) {
	e.outbox = append(e.outbox, fn)
}

func (e *Engine) emit(typ api.EventType, data any) {
	e.after(func() {
		e.hub.Emit(typ, data)
	})
}

// schedule queues a task bound to the current generation. The callback is
// only invoked while that generation is still current
func (e *Engine) schedule(
	kind string, delay time.Duration, fn func(),
) {
	gen := e.gen
	path := taskPath(gen, kind)
	e.after(func() {
		e.scheduler.After(e.ctx, path, delay, func() error {
			e.lock()
			defer e.unlock()
			if e.gen != gen {
				return nil
			}
			fn()
			return nil
		})
	})
}

// discardPending invalidates every scheduled tick, settle, and advance
// task and forgets the in-flight processing sequence
func (e *Engine) discardPending() {
	prefix := taskPath(e.gen)
	e.gen++
	e.proc = nil
	e.advancing = ""
	e.after(func() {
		e.scheduler.CancelPrefix(e.ctx, prefix)
	})
}

func taskPath(gen uint64, rest ...string) []string {
	return append([]string{"engine", strconv.FormatUint(gen, 10)}, rest...)
}
