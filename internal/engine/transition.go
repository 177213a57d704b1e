package engine

import (
	"fmt"
	"log/slog"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

// resolve evaluates a step's transition. An empty result with no error
// means the transition selected no step
func (e *Engine) resolve(
	step *api.FlowStep, ch *api.Choice, st *api.FlowState,
) (api.StepID, error) {
	switch t := step.Next.(type) {
	case nil:
		return "", nil
	case api.Literal:
		return api.StepID(t), nil
	case api.Computed:
		return t.Resolve(ch, *st.Clone()), nil
	case api.Branch:
		return t.Resolve(ch), nil
	case api.Scripted:
		if e.scripts == nil {
			return "", ErrNoScripts
		}
		return e.scripts.NextStep(t.Source, ch, *st.Clone())
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownTransition, t)
	}
}

// follow resolves the transition out of from, given the state that will
// be committed when it succeeds. A terminal step with nowhere to go
// completes the flow. The returned step is nil when nothing moved
func (e *Engine) follow(
	from *api.FlowStep, ch *api.Choice, st *api.FlowState,
) *api.FlowStep {
	target, err := e.resolve(from, ch, st)
	if err != nil {
		slog.Warn("Transition failed",
			log.FlowID(st.FlowID),
			log.StepID(from.ID),
			log.Error(err))
		return nil
	}

	if target == "" {
		if from.IsTerminal {
			e.setState(st)
			e.complete(from)
			return nil
		}
		slog.Warn("Dead end transition",
			log.FlowID(st.FlowID),
			log.StepID(from.ID),
			log.Error(ErrDeadEnd))
		return nil
	}

	to, ok := e.def.Step(target)
	if !ok {
		slog.Warn("Transition to unknown step",
			log.FlowID(st.FlowID),
			log.StepID(from.ID),
			log.Error(fmt.Errorf("%w: %s", ErrStepNotFound, target)))
		return nil
	}

	e.discardPending()
	e.setState(st.SetCurrentStep(target))
	return to
}

// enter presents a step the flow has just moved to. Processing steps run
// their agent sequence first, terminal steps with no way out complete the
// flow, and auto-advancing steps schedule their own transition
func (e *Engine) enter(step *api.FlowStep, ch *api.Choice) {
	if step.RequiresProcessing {
		e.startProcessing(step, ch)
		return
	}

	entry := e.stepEntry(e.def, step, ch)
	e.addEntry(entry)
	switch {
	case step.IsTerminal && step.Next == nil:
		e.complete(step)
	case step.AutoAdvance:
		e.advancing = entry.ID
		e.scheduleAdvance(step)
	}
}

func (e *Engine) scheduleAdvance(step *api.FlowStep) {
	delay := step.AutoAdvanceDelay
	if delay <= 0 {
		delay = e.config.AutoAdvance
	}
	e.schedule(taskAdvance, delay, func() {
		e.advance(step)
	})
}

func (e *Engine) advance(step *api.FlowStep) {
	e.advancing = ""
	if !e.isActive() || e.state.CurrentStep != step.ID {
		return
	}
	if to := e.follow(step, nil, e.state); to != nil {
		e.enter(to, nil)
	}
}
