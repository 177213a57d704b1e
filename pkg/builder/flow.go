package builder

import (
	"maps"
	"slices"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

// Flow is a builder for a flow definition
type Flow struct {
	id          api.FlowID
	displayName string
	icon        string
	initial     api.StepID
	steps       map[api.StepID]*api.FlowStep
	questions   map[api.StepID][]string
	unlocked    []api.Suggestion
	canStart    api.Guard
}

// NewFlow creates a flow builder with the specified ID
func NewFlow(id api.FlowID) *Flow {
	return &Flow{
		id:        id,
		steps:     map[api.StepID]*api.FlowStep{},
		questions: map[api.StepID][]string{},
	}
}

func (f *Flow) WithDisplayName(name string) *Flow {
	res := f.clone()
	res.displayName = name
	return res
}

func (f *Flow) WithIcon(icon string) *Flow {
	res := f.clone()
	res.icon = icon
	return res
}

// WithInitialStep sets the step the flow starts at. Without it, the first
// added step is the initial step
func (f *Flow) WithInitialStep(id api.StepID) *Flow {
	res := f.clone()
	res.initial = id
	return res
}

// WithStep adds or replaces a step
func (f *Flow) WithStep(step *Step) *Flow {
	res := f.clone()
	built := step.Build()
	res.steps[built.ID] = built
	if res.initial == "" {
		res.initial = built.ID
	}
	return res
}

// WithStepQuestions sets the contextual questions shown for a step
func (f *Flow) WithStepQuestions(id api.StepID, questions ...string) *Flow {
	res := f.clone()
	res.questions[id] = slices.Clone(questions)
	return res
}

// WithUnlockedActions appends actions made available once the flow
// completes
func (f *Flow) WithUnlockedActions(actions ...api.Suggestion) *Flow {
	res := f.clone()
	res.unlocked = append(res.unlocked, actions...)
	return res
}

// WithGuard sets the predicate that decides whether the flow may start
func (f *Flow) WithGuard(guard api.Guard) *Flow {
	res := f.clone()
	res.canStart = guard
	return res
}

// RequiresCompleted guards the flow on another flow having completed
func (f *Flow) RequiresCompleted(id api.FlowID) *Flow {
	return f.WithGuard(func(v api.EngineView) bool {
		return v.HasCompleted(id)
	})
}

// Build returns the finished flow definition
func (f *Flow) Build() *api.FlowDefinition {
	res := f.clone()
	return &api.FlowDefinition{
		ID:              res.id,
		DisplayName:     res.displayName,
		Icon:            res.icon,
		InitialStep:     res.initial,
		Steps:           res.steps,
		StepQuestions:   res.questions,
		UnlockedActions: res.unlocked,
		CanStart:        res.canStart,
	}
}

func (f *Flow) clone() *Flow {
	res := *f
	res.steps = maps.Clone(f.steps)
	res.questions = maps.Clone(f.questions)
	res.unlocked = slices.Clone(f.unlocked)
	return &res
}
