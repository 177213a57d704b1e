package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

// setState replaces the flow state, announcing a change of current step
func (e *Engine) setState(next *api.FlowState) {
	prev := e.state
	e.state = next
	if prev == nil || next == nil || prev.CurrentStep == next.CurrentStep {
		return
	}
	e.emit(api.EventStepChanged, api.StepChangedEvent{
		State:        next.Clone(),
		PreviousStep: prev.CurrentStep,
	})
}

func (e *Engine) addEntry(entry *api.ConversationEntry) {
	entry.ID = e.entryIDs()
	e.log.add(entry)
	e.emit(api.EventEntryAdded, api.EntryAddedEvent{
		Entry: entry.Clone(),
		State: e.state.Clone(),
	})
}

func (e *Engine) updateEntry(entry *api.ConversationEntry) {
	if !e.log.update(entry) {
		slog.Debug("Entry no longer in conversation",
			log.EntryID(entry.ID))
		return
	}
	e.emit(api.EventEntryUpdated, api.EntryUpdatedEvent{
		Entry: entry.Clone(),
	})
}

func (e *Engine) isActive() bool {
	return e.state != nil && !e.state.IsComplete
}

// isBusy reports whether a processing sequence or its continuation is
// still outstanding
func (e *Engine) isBusy() bool {
	return e.state != nil && (e.state.IsProcessing || e.proc != nil)
}

func (e *Engine) view() api.EngineView {
	return api.EngineView{
		Active:    e.state.Clone(),
		Completed: slices.Clone(e.completed),
	}
}

func (e *Engine) currentStep() (*api.FlowStep, error) {
	step, ok := e.def.Step(e.state.CurrentStep)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, e.state.CurrentStep)
	}
	return step, nil
}

func (e *Engine) complete(step *api.FlowStep) {
	if e.state == nil || e.state.IsComplete {
		return
	}
	id := e.state.FlowID
	e.setState(e.state.SetComplete())
	e.markCompleted(id)
	if step != nil {
		for _, r := range step.Revokes {
			e.revokeCompletion(r)
		}
	}
	slog.Info("Flow completed", log.FlowID(id))
	e.emit(api.EventFlowCompleted, api.FlowCompletedEvent{
		FlowID: id,
		State:  e.state.Clone(),
	})
}

func (e *Engine) cancelFlow() bool {
	if e.state == nil {
		return false
	}
	id := e.state.FlowID
	e.discardPending()
	e.state = nil
	e.def = nil
	slog.Info("Flow cancelled", log.FlowID(id))
	e.emit(api.EventFlowCancelled, api.FlowCancelledEvent{FlowID: id})
	return true
}

func (e *Engine) markCompleted(id api.FlowID) {
	if !slices.Contains(e.completed, id) {
		e.completed = append(e.completed, id)
	}
}

func (e *Engine) revokeCompletion(id api.FlowID) {
	e.completed = slices.DeleteFunc(e.completed, func(c api.FlowID) bool {
		return c == id
	})
}
