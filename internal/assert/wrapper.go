package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

// Wrapper wraps testify assertions with flow-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 2 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus flow-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.ProcessingTick > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// FlowAt asserts that a flow state is positioned at the given step
func (w *Wrapper) FlowAt(st *api.FlowState, flow api.FlowID, step api.StepID) {
	w.Helper()
	if !w.NotNil(st, "flow state should be set") {
		return
	}
	w.Equal(flow, st.FlowID)
	w.Equal(step, st.CurrentStep)
}

// TaskCard asserts that an entry renders the given step as a task card
func (w *Wrapper) TaskCard(
	e *api.ConversationEntry, step api.StepID, card api.CardType,
) {
	w.Helper()
	if !w.NotNil(e, "entry should be set") {
		return
	}
	w.Equal(api.EntryTaskCard, e.Type)
	w.Equal(step, e.StepID)
	w.Equal(card, e.CardType)
}

// ProgressMonotonic asserts that each observed progress snapshot only
// moves its items forward relative to the previous one
func (w *Wrapper) ProgressMonotonic(snapshots [][]api.ProgressItem) {
	w.Helper()
	for i := 1; i < len(snapshots); i++ {
		prev, next := snapshots[i-1], snapshots[i]
		if !w.Len(next, len(prev)) {
			return
		}
		for j := range next {
			w.True(prev[j].Status.Precedes(next[j].Status),
				"item %d regressed from %s to %s", j,
				prev[j].Status, next[j].Status)
		}
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}

// Never asserts that a condition stays false for the whole duration
func (w *Wrapper) Never(
	condition func() bool, duration time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if condition() {
			w.Fail(msg, args...)
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
}
