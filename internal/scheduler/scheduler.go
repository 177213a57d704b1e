package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Heropr/ask-me-anything/pkg/log"
)

type (
	// Scheduler runs delayed tasks and supports replacement and prefix cancel
	Scheduler struct {
		now       Clock
		makeTimer TimerConstructor
		requests  chan request
	}

	// TaskFunc is called when its run time arrives
	TaskFunc func() error

	// request mutates the task heap on the Run goroutine
	request func(*TaskHeap)
)

const requestBuffer = 100

// New creates a scheduler using the provided clock and timer constructor.
// Nil arguments fall back to the system clock and timers
func New(now Clock, makeTimer TimerConstructor) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if makeTimer == nil {
		makeTimer = NewTimer
	}
	return &Scheduler{
		now:       now,
		makeTimer: makeTimer,
		requests:  make(chan request, requestBuffer),
	}
}

// Now returns the current time according to the scheduler's clock
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Schedule enqueues a task to run at the requested time. A task already
// registered at the same path is replaced
func (s *Scheduler) Schedule(
	ctx context.Context, path []string, at time.Time, fn TaskFunc,
) {
	t := &Task{Func: fn, At: at, Path: path}
	s.send(ctx, func(h *TaskHeap) { h.Insert(t) })
}

// After enqueues a task to run once the delay has elapsed
func (s *Scheduler) After(
	ctx context.Context, path []string, delay time.Duration, fn TaskFunc,
) {
	s.Schedule(ctx, path, s.now().Add(delay), fn)
}

// Cancel removes the task registered for the exact path
func (s *Scheduler) Cancel(ctx context.Context, path []string) {
	s.send(ctx, func(h *TaskHeap) { h.Cancel(path) })
}

// CancelPrefix removes all tasks under the provided path prefix
func (s *Scheduler) CancelPrefix(ctx context.Context, prefix []string) {
	s.send(ctx, func(h *TaskHeap) { h.CancelPrefix(prefix) })
}

// Run processes scheduler requests until the context is cancelled. Due
// tasks are called on this goroutine
func (s *Scheduler) Run(ctx context.Context) {
	timer := s.makeTimer(0)
	tasks := NewTaskHeap()
	var fire <-chan time.Time

	rearm := func() {
		next := tasks.Peek()
		if next == nil {
			timer.Stop()
			fire = nil
			return
		}
		timer.Reset(max(next.At.Sub(s.now()), 0))
		fire = timer.Channel()
	}
	rearm()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case apply := <-s.requests:
			apply(tasks)
			rearm()

		case <-fire:
			s.runDue(tasks)
			rearm()
		}
	}
}

func (s *Scheduler) runDue(tasks *TaskHeap) {
	due := tasks.PopDue(s.now())
	if len(due) == 0 {
		// the timer fired ahead of the clock, run the earliest task anyway
		if t := tasks.PopTask(); t != nil {
			due = append(due, t)
		}
	}
	for _, t := range due {
		if err := t.Func(); err != nil {
			slog.Error("Scheduled task failed",
				slog.Any("path", t.Path),
				log.Error(err))
		}
	}
}

func (s *Scheduler) send(ctx context.Context, req request) {
	select {
	case s.requests <- req:
	case <-ctx.Done():
	}
}
