package engine

import (
	"log/slog"
	"maps"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

type interaction struct {
	data   map[string]any
	entity api.Entity
	choice *api.Choice
}

// HandleChoice records the chosen option under the current step's ID and
// moves to the step its transition selects
func (e *Engine) HandleChoice(ch api.Choice) {
	e.lock()
	defer e.unlock()
	step, ok := e.interactiveStep("choice")
	if !ok {
		return
	}
	e.interact(step, interaction{
		data: map[string]any{
			string(step.ID):        ch.Label,
			string(step.ID) + "Id": ch.ID,
		},
		choice: &ch,
	})
}

// HandleFormSubmit merges the submitted form values into the flow data and
// moves to the next step
func (e *Engine) HandleFormSubmit(data map[string]any) {
	e.lock()
	defer e.unlock()
	step, ok := e.interactiveStep("form")
	if !ok {
		return
	}
	e.interact(step, interaction{data: maps.Clone(data)})
}

// HandleEntitySelect selects an entity, such as a dentist, and moves to
// the next step. The entity is available to placeholders that follow
func (e *Engine) HandleEntitySelect(entity api.Entity) {
	e.lock()
	defer e.unlock()
	step, ok := e.interactiveStep("entity")
	if !ok {
		return
	}
	e.interact(step, interaction{
		data:   map[string]any{"selectedEntity": entity.Clone()},
		entity: entity,
		choice: &api.Choice{ID: entity.ID(), Label: entity.Name()},
	})
}

// HandleAction announces a confirmation card action. The engine's state is
// not changed; subscribers decide what the action does
func (e *Engine) HandleAction(action api.CardAction) {
	e.lock()
	defer e.unlock()
	slog.Debug("Action triggered", log.Action(action.ID))
	e.emit(api.EventActionTriggered, api.ActionTriggeredEvent{
		Action: action,
		State:  e.state.Clone(),
	})
}

// GoBack returns to the most recently visited step and shows it again.
// Data collected since then is kept
func (e *Engine) GoBack() {
	e.lock()
	defer e.unlock()
	if _, ok := e.interactiveStep("back"); !ok {
		return
	}

	prev, ok := e.state.PopHistory()
	if !ok {
		slog.Debug("Back ignored, no history", log.FlowID(e.state.FlowID))
		return
	}
	step, ok := e.def.Step(prev.CurrentStep)
	if !ok {
		slog.Warn("Back to unknown step",
			log.FlowID(prev.FlowID),
			log.StepID(prev.CurrentStep))
		return
	}

	e.discardPending()
	e.setState(prev)
	e.addEntry(e.stepEntry(e.def, step, nil))
}

// interactiveStep returns the current step when it can accept user input
func (e *Engine) interactiveStep(op string) (*api.FlowStep, bool) {
	if !e.isActive() {
		slog.Debug("Interaction ignored, no active flow",
			slog.String("operation", op))
		return nil, false
	}
	if e.isBusy() {
		slog.Debug("Interaction ignored while processing",
			slog.String("operation", op),
			log.FlowID(e.state.FlowID))
		return nil, false
	}

	step, err := e.currentStep()
	if err != nil {
		slog.Warn("Current step unavailable",
			log.FlowID(e.state.FlowID),
			log.Error(err))
		return nil, false
	}
	if step.AutoAdvance && op != "back" {
		slog.Debug("Interaction ignored on auto-advancing step",
			slog.String("operation", op),
			log.StepID(step.ID))
		return nil, false
	}
	return step, true
}

// interact commits the input and the step history only if the transition
// goes somewhere or completes the flow
func (e *Engine) interact(step *api.FlowStep, in interaction) {
	next := e.state.SetData(in.data).PushHistory()
	if in.entity != nil {
		next = next.SetSelectedEntity(in.entity)
	}
	if to := e.follow(step, in.choice, next); to != nil {
		e.enter(to, in.choice)
	}
}
