package builder

import (
	"maps"
	"slices"
	"time"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

// Step is a builder for a single flow step
type Step struct {
	step api.FlowStep
}

// NewStep creates a step builder with the given ID and card type
func NewStep(id api.StepID, cardType api.CardType) *Step {
	return &Step{
		step: api.FlowStep{ID: id, CardType: cardType},
	}
}

// NewChoicesStep creates a choices step with the given prompt
func NewChoicesStep(id api.StepID, prompt string) *Step {
	return NewStep(id, api.CardChoices).WithPrompt(prompt)
}

// NewFormStep creates a form step with the given prompt
func NewFormStep(id api.StepID, prompt string) *Step {
	return NewStep(id, api.CardForm).WithPrompt(prompt)
}

// NewProcessingStep creates a progress step that runs simulated processing
func NewProcessingStep(id api.StepID) *Step {
	return NewStep(id, api.CardProgress).WithProcessing()
}

// NewConfirmationStep creates a terminal confirmation step
func NewConfirmationStep(id api.StepID, title string) *Step {
	res := NewStep(id, api.CardConfirmation)
	res.step.Title = title
	res.step.IsTerminal = true
	return res
}

func (s *Step) WithPrompt(prompt string) *Step {
	res := s.clone()
	res.step.Prompt = prompt
	return res
}

func (s *Step) WithChoice(id, label, icon string) *Step {
	res := s.clone()
	res.step.Choices = append(res.step.Choices, api.Choice{
		ID: id, Label: label, Icon: icon,
	})
	return res
}

func (s *Step) WithField(field api.FormField) *Step {
	res := s.clone()
	field.Options = slices.Clone(field.Options)
	res.step.Fields = append(res.step.Fields, field)
	return res
}

func (s *Step) WithAgentStep(label, detail string) *Step {
	res := s.clone()
	res.step.AgentSteps = append(res.step.AgentSteps, api.AgentStep{
		Label: label, Detail: detail,
	})
	return res
}

func (s *Step) WithTitle(title string) *Step {
	res := s.clone()
	res.step.Title = title
	return res
}

func (s *Step) WithSubtitle(subtitle string) *Step {
	res := s.clone()
	res.step.Subtitle = subtitle
	return res
}

func (s *Step) WithDetail(label, value string) *Step {
	res := s.clone()
	res.step.Details = append(res.step.Details, api.Detail{
		Label: label, Value: value,
	})
	return res
}

// WithComputedDetails sets a function that produces the confirmation
// details from the flow state, replacing the static details
func (s *Step) WithComputedDetails(fn func(api.FlowState) []api.Detail) *Step {
	res := s.clone()
	res.step.ComputeDetails = fn
	return res
}

func (s *Step) WithAction(id, label string) *Step {
	res := s.clone()
	res.step.Actions = append(res.step.Actions, api.CardAction{
		ID: id, Label: label,
	})
	return res
}

func (s *Step) WithNextSteps(next ...api.Suggestion) *Step {
	res := s.clone()
	res.step.NextSteps = append(res.step.NextSteps, next...)
	return res
}

// WithContent sets the function that renders a qa step's text
func (s *Step) WithContent(fn func(api.FlowState) api.QAContent) *Step {
	res := s.clone()
	res.step.Content = fn
	return res
}

// WithDataFilter sets the function that narrows a dentists step's list
func (s *Step) WithDataFilter(fn func(api.FlowState) api.DentistFilter) *Step {
	res := s.clone()
	res.step.DataFilter = fn
	return res
}

// WithNext moves to a fixed step
func (s *Step) WithNext(id api.StepID) *Step {
	return s.WithTransition(api.Literal(id))
}

// WithComputedNext resolves the next step with a function. The possible
// targets are declared for graph validation
func (s *Step) WithComputedNext(
	fn func(*api.Choice, api.FlowState) api.StepID, possible ...api.StepID,
) *Step {
	return s.WithTransition(api.Computed{
		Func:     fn,
		Possible: slices.Clone(possible),
	})
}

// WithBranch selects the next step by choice ID
func (s *Step) WithBranch(
	cases map[string]api.StepID, fallback api.StepID,
) *Step {
	return s.WithTransition(api.Branch{
		Cases:   maps.Clone(cases),
		Default: fallback,
	})
}

// WithScript resolves the next step with a Lua script
func (s *Step) WithScript(src string, possible ...api.StepID) *Step {
	return s.WithTransition(api.Scripted{
		Source:   src,
		Possible: slices.Clone(possible),
	})
}

func (s *Step) WithTransition(t api.Transition) *Step {
	res := s.clone()
	res.step.Next = t
	return res
}

// WithAutoAdvance makes the step move on by itself after the delay
func (s *Step) WithAutoAdvance(delay time.Duration) *Step {
	res := s.clone()
	res.step.AutoAdvance = true
	res.step.AutoAdvanceDelay = delay
	return res
}

// WithRevokes removes the given flows from the completed set when the flow
// completes at this step
func (s *Step) WithRevokes(ids ...api.FlowID) *Step {
	res := s.clone()
	res.step.Revokes = append(res.step.Revokes, ids...)
	return res
}

// WithProcessing makes entering the step run its agent steps as simulated
// processing before moving on
func (s *Step) WithProcessing() *Step {
	res := s.clone()
	res.step.RequiresProcessing = true
	return res
}

func (s *Step) Terminal() *Step {
	res := s.clone()
	res.step.IsTerminal = true
	return res
}

// Build returns the finished step
func (s *Step) Build() *api.FlowStep {
	return &s.clone().step
}

func (s *Step) clone() *Step {
	res := *s
	res.step.Choices = slices.Clone(s.step.Choices)
	res.step.Fields = slices.Clone(s.step.Fields)
	res.step.AgentSteps = slices.Clone(s.step.AgentSteps)
	res.step.Details = slices.Clone(s.step.Details)
	res.step.Actions = slices.Clone(s.step.Actions)
	res.step.NextSteps = slices.Clone(s.step.NextSteps)
	res.step.Revokes = slices.Clone(s.step.Revokes)
	return &res
}
