package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heropr/ask-me-anything/internal/assert/helpers"
	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/internal/engine"
	"github.com/Heropr/ask-me-anything/internal/flows"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

func TestAddQAEntryWithoutFlow(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.AddQAEntry("Does Smirk cover braces?", "Yes, for kids.", false)

		card := eng.GetCurrentCard()
		require.NotNil(t, card)
		assert.Equal(t, api.EntryQA, card.Type)
		assert.Equal(t, "Does Smirk cover braces?", card.Question)
		assert.Equal(t, "Yes, for kids.", card.Answer)
		assert.False(t, card.IsTaskClarification)
		assert.NotEmpty(t, card.ID)

		added := env.Recorder.OfType(api.EventEntryAdded)
		require.Len(t, added, 1)
		assert.Nil(t, added[0].Data.(api.EntryAddedEvent).State)
	})
}

func TestAddQAEntryDuringFlow(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Booking)
		eng.AddQAEntry("Can I see a specialist directly?", "Often.", true)

		history := eng.GetConversationHistory()
		require.Len(t, history, 2)
		assert.True(t, history[1].IsTaskClarification)
		assert.Equal(t, api.StepID("reason"), eng.GetState().CurrentStep)

		added := env.Recorder.OfType(api.EventEntryAdded)
		require.Len(t, added, 2)
		assert.Equal(t, flows.Booking,
			added[1].Data.(api.EntryAddedEvent).State.FlowID)
	})
}

func TestClearConversation(t *testing.T) {
	helpers.WithConfiguredEnv(t, slowTicks, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})
		require.True(t, eng.IsProcessing())

		eng.ClearConversation()
		assert.Nil(t, eng.GetState())
		assert.Empty(t, eng.GetConversationHistory())
		assert.Nil(t, eng.GetCurrentCard())
		assert.Equal(t, 1, env.Recorder.Count(api.EventFlowCancelled))
		cancelled := env.Recorder.OfType(api.EventFlowCancelled)[0]
		assert.Equal(t, flows.Claim,
			cancelled.Data.(api.FlowCancelledEvent).FlowID)

		eng.ClearConversation()
		assert.Equal(t, 1, env.Recorder.Count(api.EventFlowCancelled))

		time.Sleep(6 * env.Config.ProcessingTick)
		assert.Empty(t, eng.GetConversationHistory())
		assert.Equal(t, 0, env.Recorder.Count(api.EventProcessingCompleted))
	})
}

func TestTruncateConversation(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		for _, q := range []string{"a", "b", "c", "d", "e"} {
			eng.AddQAEntry(q, q, false)
		}

		eng.TruncateConversation(9)
		assert.Len(t, eng.GetConversationHistory(), 5)

		eng.TruncateConversation(2)
		history := eng.GetConversationHistory()
		require.Len(t, history, 3)
		assert.Equal(t, "c", history[2].Question)

		eng.TruncateConversation(-1)
		assert.Empty(t, eng.GetConversationHistory())
	})
}

func TestTruncateKeepsFlow(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.AddQAEntry("q", "a", false)
		eng.StartFlow(flows.Booking)
		eng.HandleChoice(api.Choice{ID: "pain", Label: "Pain or discomfort"})

		eng.TruncateConversation(0)
		assert.Len(t, eng.GetConversationHistory(), 1)
		assert.Equal(t, api.StepID("severity"), eng.GetState().CurrentStep)
		assert.Equal(t, 0, env.Recorder.Count(api.EventFlowCancelled))
	})
}

func TestTruncateProcessingEntry(t *testing.T) {
	helpers.WithConfiguredEnv(t, slowTicks, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})
		require.Len(t, eng.GetConversationHistory(), 2)

		eng.TruncateConversation(0)
		assert.Len(t, eng.GetConversationHistory(), 1)
		assert.Nil(t, eng.GetState())
		assert.False(t, eng.IsProcessing())
		assert.Equal(t, 1, env.Recorder.Count(api.EventFlowCancelled))

		time.Sleep(6 * env.Config.ProcessingTick)
		assert.Equal(t, 0, env.Recorder.Count(api.EventProcessingCompleted))

		require.NoError(t, eng.TryStartFlow(flows.Claim))
		assert.Equal(t, api.StepID("method"), eng.GetState().CurrentStep)
		assert.Len(t, eng.GetConversationHistory(), 2)
	})
}

func TestReadsReturnCopies(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Booking)
		eng.HandleChoice(api.Choice{ID: "pain", Label: "Pain or discomfort"})

		st := eng.GetState()
		st.Data["reason"] = "changed"
		st.StepHistory[0] = "nowhere"
		st.CurrentStep = "nowhere"

		history := eng.GetConversationHistory()
		history[0].Prompt = "changed"
		history[0].Choices[0].Label = "changed"

		fresh := eng.GetState()
		assert.Equal(t, "Pain or discomfort", fresh.Data["reason"])
		assert.Equal(t, []api.StepID{"reason"}, fresh.StepHistory)
		assert.Equal(t, api.StepID("severity"), fresh.CurrentStep)

		entry := eng.GetConversationHistory()[0]
		assert.Equal(t, "What brings you in today?", entry.Prompt)
		assert.Equal(t, "Routine cleaning", entry.Choices[0].Label)
	})
}

func TestCurrentFlowAndStep(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		_, ok := eng.GetCurrentFlow()
		assert.False(t, ok)
		_, ok = eng.GetCurrentStep()
		assert.False(t, ok)

		eng.StartFlow(flows.Claim)
		def, ok := eng.GetCurrentFlow()
		require.True(t, ok)
		assert.Equal(t, flows.Claim, def.ID)

		step, ok := eng.GetCurrentStep()
		require.True(t, ok)
		assert.Equal(t, api.StepID("method"), step.ID)
	})
}

func TestContextualQuestions(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		assert.Equal(t, []string{}, eng.GetContextualQuestions())

		eng.StartFlow(flows.Booking)
		assert.Equal(t, []string{
			"What counts as a dental emergency?",
			"Can I see a specialist directly?",
			"What's covered in a routine visit?",
		}, eng.GetContextualQuestions())

		env.Register(t, helpers.NewLinearFlow())
		eng.StartFlow(helpers.LinearFlow)
		assert.Equal(t, []string{}, eng.GetContextualQuestions())
	})
}

func TestUnlockedActionsDedupe(t *testing.T) {
	dup := helpers.NewLinearFlow()
	dup.ID = "dup"
	dup.UnlockedActions = []api.Suggestion{api.Task("Reschedule appointment")}

	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		env.Register(t, dup)
		env.Engine.MarkFlowCompleted(flows.Booking)
		env.Engine.MarkFlowCompleted("dup")
		assert.Equal(t, []api.Suggestion{
			api.Task("Reschedule appointment"),
			api.Task("Cancel appointment"),
		}, env.Engine.GetUnlockedActions())
	})

	helpers.WithConfiguredEnv(t,
		func(cfg *config.Config) { cfg.DedupeUnlocked = false },
		func(env *helpers.TestEngineEnv) {
			env.Register(t, dup)
			env.Engine.MarkFlowCompleted(flows.Booking)
			env.Engine.MarkFlowCompleted("dup")
			assert.Len(t, env.Engine.GetUnlockedActions(), 3)
		},
	)
}

func TestCancelAppointmentRevokesBooking(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.MarkFlowCompleted(flows.Booking)
		eng.StartFlow(flows.Cancel)
		eng.HandleChoice(api.Choice{ID: "yes", Label: "Yes, cancel it"})

		assert.Eventually(t, func() bool {
			return env.Recorder.Count(api.EventFlowCompleted) == 1
		}, waitFor, tick)

		assert.Equal(t, []api.FlowID{flows.Cancel}, eng.GetCompletedFlows())
		assert.Empty(t, eng.GetUnlockedActions())
		assert.ErrorIs(t, eng.TryStartFlow(flows.Reschedule),
			engine.ErrGuardRejected)
	})
}

func TestKeepAppointment(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.MarkFlowCompleted(flows.Booking)
		eng.StartFlow(flows.Cancel)
		eng.HandleChoice(api.Choice{ID: "no", Label: "No, keep it"})

		card := eng.GetCurrentCard()
		assert.Equal(t, "Appointment Kept", card.Title)
		assert.Contains(t, eng.GetCompletedFlows(), flows.Booking)
	})
}

func TestSession(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Booking)
		eng.HandleChoice(api.Choice{ID: "pain", Label: "Pain or discomfort"})

		s := eng.Session()
		require.NotNil(t, s.State)
		assert.Equal(t, api.StepID("severity"), s.State.CurrentStep)
		assert.Len(t, s.History, 2)
		assert.Equal(t, s.History[1], s.CurrentCard)
		assert.True(t, s.CanGoBack)
		assert.False(t, s.IsProcessing)
		assert.Len(t, s.Questions, 3)
		assert.Empty(t, s.Unlocked)
		assert.Empty(t, s.CompletedFlows)
	})
}
