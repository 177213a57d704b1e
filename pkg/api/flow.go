package api

import (
	"slices"
	"time"
)

type (
	// FlowDefinition declaratively describes one guided task. Definitions
	// are immutable once registered
	FlowDefinition struct {
		Steps           map[StepID]*FlowStep `json:"steps"`
		StepQuestions   map[StepID][]string  `json:"step_questions,omitempty"`
		CanStart        Guard                `json:"-"`
		ID              FlowID               `json:"id"`
		DisplayName     string               `json:"display_name"`
		Icon            string               `json:"icon,omitempty"`
		InitialStep     StepID               `json:"initial_step"`
		UnlockedActions []Suggestion         `json:"unlocked_actions,omitempty"`
	}

	// FlowStep is one node in a flow's transition graph
	FlowStep struct {
		Next               Transition                    `json:"-"`
		ComputeDetails     func(FlowState) []Detail      `json:"-"`
		Content            func(FlowState) QAContent     `json:"-"`
		DataFilter         func(FlowState) DentistFilter `json:"-"`
		ID                 StepID                        `json:"id"`
		CardType           CardType                      `json:"card_type"`
		Prompt             string                        `json:"prompt,omitempty"`
		Title              string                        `json:"title,omitempty"`
		Subtitle           string                        `json:"subtitle,omitempty"`
		Choices            []Choice                      `json:"choices,omitempty"`
		Fields             []FormField                   `json:"fields,omitempty"`
		AgentSteps         []AgentStep                   `json:"agent_steps,omitempty"`
		Details            []Detail                      `json:"details,omitempty"`
		Actions            []CardAction                  `json:"actions,omitempty"`
		NextSteps          []Suggestion                  `json:"next_steps,omitempty"`
		Revokes            []FlowID                      `json:"revokes,omitempty"`
		AutoAdvanceDelay   time.Duration                 `json:"auto_advance_delay,omitempty"`
		IsTerminal         bool                          `json:"is_terminal,omitempty"`
		RequiresProcessing bool                          `json:"requires_processing,omitempty"`
		AutoAdvance        bool                          `json:"auto_advance,omitempty"`
	}

	// Choice is one selectable option on a choices card
	Choice struct {
		ID    string `json:"id" yaml:"id"`
		Label string `json:"label" yaml:"label"`
		Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
	}

	// FormField describes one input on a form card
	FormField struct {
		ID          string   `json:"id" yaml:"id"`
		Label       string   `json:"label" yaml:"label"`
		Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
		Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
		Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	}

	// AgentStep is one line of a simulated processing sequence
	AgentStep struct {
		Label  string `json:"label" yaml:"label"`
		Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	}

	// Detail is a label/value pair shown on a confirmation card
	Detail struct {
		Label string `json:"label" yaml:"label"`
		Value string `json:"value" yaml:"value"`
	}

	// CardAction is a button on a confirmation card
	CardAction struct {
		ID    string `json:"id" yaml:"id"`
		Label string `json:"label" yaml:"label"`
	}

	// Suggestion is a follow-up prompt. Tasks start flows, the rest are
	// informational questions
	Suggestion struct {
		Text   string `json:"text" yaml:"text"`
		IsTask bool   `json:"is_task" yaml:"task"`
	}

	// QAContent is the question/answer pair rendered by a qa step
	QAContent struct {
		Question string `json:"question,omitempty"`
		Answer   string `json:"answer"`
	}

	// DentistFilter narrows the dentist list shown on a dentists card
	DentistFilter struct {
		UrgentOnly bool `json:"urgent_only,omitempty"`
	}

	// Guard decides whether a flow may be entered given the engine's view
	Guard func(EngineView) bool

	// EngineView is the read-only engine state handed to guards
	EngineView struct {
		Active    *FlowState
		Completed []FlowID
	}
)

// Task creates a suggestion that starts a task flow
func Task(text string) Suggestion {
	return Suggestion{Text: text, IsTask: true}
}

// Info creates an informational suggestion
func Info(text string) Suggestion {
	return Suggestion{Text: text}
}

// HasCompleted reports whether the flow has been completed
func (v EngineView) HasCompleted(id FlowID) bool {
	return slices.Contains(v.Completed, id)
}

// Step returns the step registered under id
func (f *FlowDefinition) Step(id StepID) (*FlowStep, bool) {
	if f == nil {
		return nil, false
	}
	s, ok := f.Steps[id]
	return s, ok && s != nil
}

// SortedStepIDs returns the definition's step IDs in lexical order
func (f *FlowDefinition) SortedStepIDs() []StepID {
	res := make([]StepID, 0, len(f.Steps))
	for id := range f.Steps {
		res = append(res, id)
	}
	slices.Sort(res)
	return res
}

// Targets returns every step ID this step may transition to
func (s *FlowStep) Targets() []StepID {
	if s.Next == nil {
		return nil
	}
	return s.Next.Targets()
}
