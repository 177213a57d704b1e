package engine

import "github.com/Heropr/ask-me-anything/pkg/api"

const defaultDentistsPrompt = "Here's who can see you:"

func (e *Engine) renderContext(ch *api.Choice) api.RenderContext {
	rc := api.NewRenderContext(e.state, ch)
	rc.Random = e.random
	return rc
}

// stepEntry renders the conversation entry for a step against the current
// state and the choice that led to it
func (e *Engine) stepEntry(
	def *api.FlowDefinition, step *api.FlowStep, ch *api.Choice,
) *api.ConversationEntry {
	rc := e.renderContext(ch)
	res := &api.ConversationEntry{
		Type:     api.EntryTaskCard,
		FlowID:   def.ID,
		StepID:   step.ID,
		CardType: step.CardType,
		Prompt:   rc.Render(step.Prompt),
	}

	switch step.CardType {
	case api.CardChoices:
		res.Choices = step.Choices
	case api.CardForm:
		res.Fields = step.Fields
	case api.CardDentists:
		var filter api.DentistFilter
		if step.DataFilter != nil {
			filter = step.DataFilter(*e.state.Clone())
		}
		res.Dentists = e.repo.GetDentistsSync(filter)
		if res.Prompt == "" {
			res.Prompt = defaultDentistsPrompt
		}
	case api.CardProgress:
		res.Steps = api.NewProgressItems(rc.RenderAgentSteps(step.AgentSteps), 0)
	case api.CardConfirmation:
		e.confirmation(res, def, step, rc)
	case api.CardQA:
		res.Type = api.EntryQA
		if step.Content != nil {
			c := step.Content(*e.state.Clone())
			res.Question = rc.Render(c.Question)
			res.Answer = rc.Render(c.Answer)
		}
	}
	return res.Clone()
}

func (e *Engine) confirmation(
	res *api.ConversationEntry, def *api.FlowDefinition, step *api.FlowStep,
	rc api.RenderContext,
) {
	res.Title = rc.Render(step.Title)
	res.Subtitle = rc.Render(step.Subtitle)
	if name := e.state.SelectedEntity.Name(); name != "" {
		res.Subtitle = name
	}

	if step.ComputeDetails != nil {
		res.Details = step.ComputeDetails(*e.state.Clone())
	} else {
		res.Details = rc.RenderDetails(step.Details)
	}

	res.Actions = step.Actions
	res.NextSteps = step.NextSteps
	if len(res.NextSteps) == 0 {
		res.NextSteps = def.UnlockedActions
	}
}
