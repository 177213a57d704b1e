package scheduler

import "time"

type (
	// Clock reports the current time. Tests substitute a fixed or stepped
	// clock so tick and settle delays stay deterministic
	Clock func() time.Time

	// Timer is the single resettable wake-up the Run loop waits on
	Timer interface {
		Channel() <-chan time.Time
		Reset(delay time.Duration) bool
		Stop() bool
	}

	// TimerConstructor builds the Run loop's Timer
	TimerConstructor func(delay time.Duration) Timer

	wallTimer struct {
		timer *time.Timer
	}
)

var _ Timer = (*wallTimer)(nil)

// NewTimer returns a Timer backed by the runtime's wall-clock timers
func NewTimer(delay time.Duration) Timer {
	return &wallTimer{timer: time.NewTimer(delay)}
}

func (w *wallTimer) Channel() <-chan time.Time {
	return w.timer.C
}

func (w *wallTimer) Reset(delay time.Duration) bool {
	return w.timer.Reset(delay)
}

func (w *wallTimer) Stop() bool {
	return w.timer.Stop()
}
