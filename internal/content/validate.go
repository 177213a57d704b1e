package content

import (
	"fmt"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

// ScriptChecker compiles transition scripts without running them
type ScriptChecker interface {
	Validate(src string) error
}

// Register validates a flow definition and registers it
func (r *Repository) Register(def *api.FlowDefinition, sc ScriptChecker) error {
	if err := Validate(def, sc); err != nil {
		return err
	}
	r.RegisterFlow(def)
	return nil
}

// Validate checks a flow definition's structure and walks its transition
// graph from the initial step. Every target a reachable step can resolve
// to must exist. Scripts are compiled when sc is not nil
func Validate(def *api.FlowDefinition, sc ScriptChecker) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidFlow)
	}
	checks := []func() error{
		func() error { return validateHeader(def) },
		func() error { return validateSteps(def) },
		func() error { return validateScripts(def, sc) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return fmt.Errorf("flow %q: %w", def.ID, err)
		}
	}
	return validateGraph(def)
}

func validateHeader(def *api.FlowDefinition) error {
	if def.ID == "" || api.SanitizeID(def.ID) != def.ID {
		return fmt.Errorf("%w: bad flow id %q", ErrInvalidFlow, def.ID)
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidFlow)
	}
	if _, ok := def.Step(def.InitialStep); !ok {
		return fmt.Errorf("%w: initial step %q", ErrDanglingTransition,
			def.InitialStep)
	}
	return nil
}

func validateSteps(def *api.FlowDefinition) error {
	for _, id := range def.SortedStepIDs() {
		step := def.Steps[id]
		if step == nil || step.ID != id {
			return fmt.Errorf("%w: step key %q does not match its id",
				ErrInvalidFlow, id)
		}
		if !step.CardType.IsValid() {
			return fmt.Errorf("%w: step %q has card type %q",
				ErrUnknownCardType, id, step.CardType)
		}
		if step.Next == nil && !step.IsTerminal {
			return fmt.Errorf("%w: step %q has no transition and is "+
				"not terminal", ErrInvalidFlow, id)
		}
		if step.RequiresProcessing && len(step.AgentSteps) == 0 {
			return fmt.Errorf("%w: processing step %q has no agent steps",
				ErrInvalidFlow, id)
		}
		if c, ok := step.Next.(api.Computed); ok && len(c.Possible) == 0 {
			return fmt.Errorf("%w: computed transition of step %q "+
				"declares no targets", ErrInvalidFlow, id)
		}
	}
	return nil
}

func validateScripts(def *api.FlowDefinition, sc ScriptChecker) error {
	if sc == nil {
		return nil
	}
	for _, id := range def.SortedStepIDs() {
		s, ok := def.Steps[id].Next.(api.Scripted)
		if !ok {
			continue
		}
		if err := sc.Validate(s.Source); err != nil {
			return fmt.Errorf("%w: step %q: %w", ErrInvalidScript, id, err)
		}
	}
	return nil
}

func validateGraph(def *api.FlowDefinition) error {
	seen := util.SetOf(def.InitialStep)
	queue := []api.StepID{def.InitialStep}
	for len(queue) > 0 {
		from := queue[0]
		queue = queue[1:]
		for _, to := range def.Steps[from].Targets() {
			if _, ok := def.Step(to); !ok {
				return fmt.Errorf("flow %q: %w: %q -> %q", def.ID,
					ErrDanglingTransition, from, to)
			}
			if !seen.Contains(to) {
				seen.Add(to)
				queue = append(queue, to)
			}
		}
	}
	return nil
}
