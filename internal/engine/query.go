package engine

import (
	"slices"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

// GetState returns a copy of the active flow state, or nil
func (e *Engine) GetState() *api.FlowState {
	e.lock()
	defer e.unlock()
	return e.state.Clone()
}

// GetCurrentFlow returns the definition of the flow in progress
func (e *Engine) GetCurrentFlow() (*api.FlowDefinition, bool) {
	e.lock()
	defer e.unlock()
	if e.state == nil {
		return nil, false
	}
	return e.def, true
}

// GetCurrentStep returns the step the flow is positioned at
func (e *Engine) GetCurrentStep() (*api.FlowStep, bool) {
	e.lock()
	defer e.unlock()
	if e.state == nil {
		return nil, false
	}
	step, err := e.currentStep()
	return step, err == nil
}

// GetCurrentCard returns a copy of the last conversation entry, or nil
func (e *Engine) GetCurrentCard() *api.ConversationEntry {
	e.lock()
	defer e.unlock()
	return e.log.last()
}

// GetConversationHistory returns a copy of every entry in the log
func (e *Engine) GetConversationHistory() []*api.ConversationEntry {
	e.lock()
	defer e.unlock()
	return e.log.snapshot()
}

func (e *Engine) IsFlowActive() bool {
	e.lock()
	defer e.unlock()
	return e.isActive()
}

func (e *Engine) IsProcessing() bool {
	e.lock()
	defer e.unlock()
	return e.state != nil && e.state.IsProcessing
}

// CanGoBack reports whether GoBack would move to a previous step
func (e *Engine) CanGoBack() bool {
	e.lock()
	defer e.unlock()
	return e.canGoBack()
}

// GetContextualQuestions returns the suggested questions for the current
// step. The flow's own list wins over the repository's table
func (e *Engine) GetContextualQuestions() []string {
	e.lock()
	defer e.unlock()
	return e.contextualQuestions()
}

// GetUnlockedActions returns the follow-up actions made available by the
// completed flows, in completion order
func (e *Engine) GetUnlockedActions() []api.Suggestion {
	e.lock()
	defer e.unlock()
	return e.unlockedActions()
}

// GetCompletedFlows returns the IDs of completed flows in completion order
func (e *Engine) GetCompletedFlows() []api.FlowID {
	e.lock()
	defer e.unlock()
	return slices.Clone(e.completed)
}

// Session returns a consistent read of the engine state in one call
func (e *Engine) Session() api.SessionResponse {
	e.lock()
	defer e.unlock()
	return api.SessionResponse{
		State:          e.state.Clone(),
		CurrentCard:    e.log.last(),
		History:        e.log.snapshot(),
		Questions:      e.contextualQuestions(),
		Unlocked:       e.unlockedActions(),
		CompletedFlows: slices.Clone(e.completed),
		CanGoBack:      e.canGoBack(),
		IsProcessing:   e.state != nil && e.state.IsProcessing,
	}
}

func (e *Engine) canGoBack() bool {
	return e.isActive() && !e.isBusy() && len(e.state.StepHistory) > 0
}

func (e *Engine) contextualQuestions() []string {
	if e.state == nil {
		return []string{}
	}
	if qs, ok := e.def.StepQuestions[e.state.CurrentStep]; ok {
		return slices.Clone(qs)
	}
	res := e.repo.GetTaskQuestions(e.state.FlowID, e.state.CurrentStep)
	if res == nil {
		return []string{}
	}
	return res
}

func (e *Engine) unlockedActions() []api.Suggestion {
	res := e.repo.GetAllUnlockedActions(e.completed)
	if !e.config.DedupeUnlocked {
		return res
	}
	seen := util.SetOf[string]()
	return slices.DeleteFunc(res, func(s api.Suggestion) bool {
		if seen.Contains(s.Text) {
			return true
		}
		seen.Add(s.Text)
		return false
	})
}
