package engine

import (
	"fmt"
	"log/slog"

	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

// StartFlow enters the named flow at its initial step. An unknown flow, a
// rejecting guard, or an active flow under the reject policy leave the
// engine untouched; the reason is logged
func (e *Engine) StartFlow(id api.FlowID) {
	_ = e.TryStartFlow(id)
}

// TryStartFlow behaves like StartFlow and also returns the reason a start
// was ignored
func (e *Engine) TryStartFlow(id api.FlowID) error {
	e.lock()
	defer e.unlock()

	def, ok := e.repo.GetFlow(id)
	if !ok {
		slog.Error("Flow not found", log.FlowID(id))
		return fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}

	if def.CanStart != nil && !def.CanStart(e.view()) {
		slog.Warn("Flow start rejected by guard", log.FlowID(id))
		return fmt.Errorf("%w: %s", ErrGuardRejected, id)
	}

	initial, ok := def.Step(def.InitialStep)
	if !ok {
		slog.Error("Flow initial step not found",
			log.FlowID(id),
			log.StepID(def.InitialStep))
		return fmt.Errorf("%w: %s", ErrStepNotFound, def.InitialStep)
	}

	if e.isActive() {
		if e.config.ReplacePolicy == config.RejectActive {
			slog.Warn("Flow start rejected, another flow is active",
				log.FlowID(id),
				slog.String("active_flow", string(e.state.FlowID)))
			return fmt.Errorf("%w: %s", ErrFlowActive, e.state.FlowID)
		}
		e.cancelFlow()
	}

	e.discardPending()
	e.state = nil
	e.def = def
	e.setState(api.NewFlowState(id, def.InitialStep))
	slog.Info("Flow started", log.FlowID(id))
	e.emit(api.EventFlowStarted, api.FlowStartedEvent{
		FlowID: id,
		State:  e.state.Clone(),
	})
	e.enter(initial, nil)
	return nil
}

// CanStartFlow reports whether the flow is registered and its guard
// currently allows a start. The replace policy is not consulted
func (e *Engine) CanStartFlow(id api.FlowID) bool {
	e.lock()
	defer e.unlock()
	def, ok := e.repo.GetFlow(id)
	if !ok {
		return false
	}
	return def.CanStart == nil || def.CanStart(e.view())
}

// CancelFlow discards the active flow and any processing or pending
// advance. The conversation log is kept
func (e *Engine) CancelFlow() {
	e.lock()
	defer e.unlock()
	if !e.cancelFlow() {
		slog.Debug("Cancel ignored, no flow")
	}
}

// CompleteFlow marks the active flow complete and records it as
// completed. Completing a flow that is already complete does nothing
func (e *Engine) CompleteFlow() {
	e.lock()
	defer e.unlock()
	if !e.isActive() {
		slog.Debug("Complete ignored, no active flow")
		return
	}

	var revokes *api.FlowStep
	if step, err := e.currentStep(); err == nil && step.IsTerminal {
		revokes = step
	}
	if e.isBusy() {
		e.discardPending()
		e.setState(e.state.SetProcessing(false))
	}
	e.complete(revokes)
}

// MarkFlowCompleted records a flow as completed without running it, as
// when restoring a previous session
func (e *Engine) MarkFlowCompleted(id api.FlowID) {
	e.lock()
	defer e.unlock()
	e.markCompleted(id)
}

// RevokeCompletion removes a flow from the completed set, withdrawing the
// actions it unlocked
func (e *Engine) RevokeCompletion(id api.FlowID) {
	e.lock()
	defer e.unlock()
	e.revokeCompletion(id)
}
