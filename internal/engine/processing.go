package engine

import (
	"log/slog"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

// processing tracks the one simulated sequence in flight. It stays set
// until the settle continuation has run, so interactions stay blocked
// through the settle delay
type processing struct {
	step    *api.FlowStep
	choice  *api.Choice
	entry   *api.ConversationEntry
	agent   []api.AgentStep
	pointer int
}

func (e *Engine) startProcessing(step *api.FlowStep, ch *api.Choice) {
	rc := e.renderContext(ch)
	agent := rc.RenderAgentSteps(step.AgentSteps)
	entry := &api.ConversationEntry{
		Type:     api.EntryTaskCard,
		FlowID:   e.def.ID,
		StepID:   step.ID,
		CardType: api.CardProgress,
		Prompt:   rc.Render(step.Prompt),
		Steps:    api.NewProgressItems(agent, 0),
	}

	e.setState(e.state.SetProcessing(true))
	slog.Debug("Processing started",
		log.FlowID(e.state.FlowID),
		log.StepID(step.ID),
		slog.Int("agent_steps", len(agent)))
	e.emit(api.EventProcessingStarted, api.ProcessingStartedEvent{
		State: e.state.Clone(),
	})
	e.addEntry(entry)

	e.proc = &processing{
		step:   step,
		choice: ch,
		entry:  entry.Clone(),
		agent:  agent,
	}
	e.schedule(taskTick, e.config.ProcessingTick, e.tick)
}

// tick advances the progress pointer by one agent step
func (e *Engine) tick() {
	p := e.proc
	if p == nil {
		return
	}
	p.pointer++
	p.entry.Steps = api.NewProgressItems(p.agent, p.pointer)
	e.updateEntry(p.entry.Clone())

	if p.pointer < len(p.agent) {
		e.schedule(taskTick, e.config.ProcessingTick, e.tick)
		return
	}

	e.setState(e.state.SetProcessing(false))
	slog.Debug("Processing completed",
		log.FlowID(e.state.FlowID),
		log.StepID(p.step.ID))
	e.emit(api.EventProcessingCompleted, api.ProcessingCompletedEvent{
		State: e.state.Clone(),
	})
	e.schedule(taskSettle, e.config.ProcessingSettle, e.settle)
}

// settle runs the continuation once processing has finished: the step
// after the processing step is resolved and entered
func (e *Engine) settle() {
	p := e.proc
	if p == nil {
		return
	}
	e.proc = nil
	if to := e.follow(p.step, p.choice, e.state); to != nil {
		e.enter(to, p.choice)
	}
}
