package engine_test

import (
	"testing"
	"time"

	testify "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heropr/ask-me-anything/internal/assert"
	"github.com/Heropr/ask-me-anything/internal/assert/helpers"
	"github.com/Heropr/ask-me-anything/internal/assert/wait"
	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/internal/flows"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

func slowTicks(cfg *config.Config) {
	cfg.ProcessingTick = 50 * time.Millisecond
	cfg.ProcessingSettle = 50 * time.Millisecond
}

func TestProcessingProgress(t *testing.T) {
	as := assert.New(t)

	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})

		progress := addedEntry(env, "processing")
		as.TaskCard(progress, "processing", api.CardProgress)
		as.Equal([]api.ProgressStatus{
			api.ProgressWorking, api.ProgressPending, api.ProgressPending,
		}, statuses(progress.Steps))

		as.Eventually(func() bool {
			return env.Recorder.Count(api.EventFlowCompleted) == 1
		}, waitFor, "claim flow should complete")

		snapshots := [][]api.ProgressItem{progress.Steps}
		var lastUpdate int64
		for _, ev := range env.Recorder.OfType(api.EventEntryUpdated) {
			entry := ev.Data.(api.EntryUpdatedEvent).Entry
			as.Equal(progress.ID, entry.ID)
			snapshots = append(snapshots, entry.Steps)
			lastUpdate = ev.Sequence
		}
		as.Len(snapshots, 4)
		as.ProgressMonotonic(snapshots)
		as.Equal([]api.ProgressStatus{
			api.ProgressDone, api.ProgressDone, api.ProgressDone,
		}, statuses(snapshots[len(snapshots)-1]))

		history := eng.GetConversationHistory()
		as.Require.Len(history, 3)
		as.Equal(progress.ID, history[1].ID)
		as.Equal(api.ProgressDone, history[1].Steps[2].Status)

		done := doneEntries(env)
		as.Require.Len(done, 1)
		as.Greater(done[0].Sequence, lastUpdate)

		completed := env.Recorder.OfType(api.EventProcessingCompleted)
		as.Require.Len(completed, 1)
		as.Less(completed[0].Sequence, done[0].Sequence)
		as.False(eng.IsProcessing())
	})
}

func TestProcessingEventOrder(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		env.Recorder.Reset()
		eng.HandleChoice(api.Choice{ID: "upload", Label: "Upload file"})

		testify.Eventually(t, func() bool {
			return env.Recorder.Count(api.EventFlowCompleted) == 1
		}, waitFor, tick)

		testify.Equal(t, []api.EventType{
			api.EventStepChanged,
			api.EventProcessingStarted,
			api.EventEntryAdded,
			api.EventEntryUpdated,
			api.EventEntryUpdated,
			api.EventEntryUpdated,
			api.EventProcessingCompleted,
			api.EventStepChanged,
			api.EventEntryAdded,
			api.EventFlowCompleted,
		}, env.Recorder.Types())
	})
}

func TestContinuationFiresOnce(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})

		testify.Eventually(t, func() bool {
			return len(doneEntries(env)) == 1
		}, waitFor, tick)

		time.Sleep(10 * env.Config.ProcessingTick)
		testify.Len(t, doneEntries(env), 1)
		testify.Equal(t, 1, env.Recorder.Count(api.EventProcessingStarted))
		testify.Equal(t, 1, env.Recorder.Count(api.EventProcessingCompleted))
	})
}

func TestCancelDuringProcessing(t *testing.T) {
	helpers.WithConfiguredEnv(t, slowTicks, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})
		require.True(t, eng.IsProcessing())

		eng.CancelFlow()
		testify.Nil(t, eng.GetState())
		testify.False(t, eng.IsProcessing())

		time.Sleep(6 * env.Config.ProcessingTick)
		testify.Empty(t, doneEntries(env))
		testify.Equal(t, 0, env.Recorder.Count(api.EventProcessingCompleted))
		testify.Equal(t, 0, env.Recorder.Count(api.EventFlowCompleted))
		testify.Len(t, eng.GetConversationHistory(), 2)
	})
}

func TestCancelDuringSettle(t *testing.T) {
	helpers.WithConfiguredEnv(t,
		func(cfg *config.Config) {
			cfg.ProcessingSettle = 200 * time.Millisecond
		},
		func(env *helpers.TestEngineEnv) {
			eng := env.Engine
			eng.StartFlow(flows.Claim)
			eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})

			testify.Eventually(t, func() bool {
				return env.Recorder.Count(api.EventProcessingCompleted) == 1
			}, waitFor, tick)

			eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})
			testify.Len(t, eng.GetConversationHistory(), 2)

			eng.CancelFlow()
			time.Sleep(2 * env.Config.ProcessingSettle)
			testify.Empty(t, doneEntries(env))
			testify.Nil(t, eng.GetState())
		},
	)
}

func TestInteractionsBlockedWhileProcessing(t *testing.T) {
	helpers.WithConfiguredEnv(t, slowTicks, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Claim)
		eng.HandleChoice(api.Choice{ID: "photo", Label: "Take a photo"})
		before := eng.GetState()
		count := len(eng.GetConversationHistory())

		eng.HandleChoice(api.Choice{ID: "upload", Label: "Upload file"})
		eng.HandleFormSubmit(map[string]any{"x": 1})
		eng.HandleEntitySelect(api.Entity{"id": 1, "name": "Dr. X"})
		eng.GoBack()

		testify.Equal(t, before, eng.GetState())
		testify.Len(t, eng.GetConversationHistory(), count)
		testify.False(t, eng.CanGoBack())
	})
}

func TestFamilyRoundTrip(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		cons := env.Stream.NewConsumer()
		defer cons.Close()

		eng.StartFlow(flows.Family)
		eng.HandleFormSubmit(map[string]any{
			"name":         "Jane Doe",
			"relationship": "Spouse",
			"dob":          "01/01/1990",
		})

		progress := eng.GetConversationHistory()[1]
		testify.Equal(t, "Jane Doe", progress.Steps[1].Detail)

		w := wait.On(t, cons)
		w.ForEvent(wait.FlowCompleted(flows.Family))

		card := eng.GetCurrentCard()
		require.NotNil(t, card)
		testify.Equal(t, api.CardConfirmation, card.CardType)
		testify.Equal(t, "Family Member Added", card.Title)
		testify.Contains(t, card.Details,
			api.Detail{Label: "Name", Value: "Jane Doe"})
		testify.Contains(t, card.Details,
			api.Detail{Label: "Relationship", Value: "Spouse"})
		for _, d := range card.Details {
			testify.NotContains(t, d.Value, "{")
		}
		testify.Regexp(t, `^SMK-[0-9A-F]{6}$`, card.Details[3].Value)
	})
}

func TestBookingEndToEnd(t *testing.T) {
	as := assert.New(t)

	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Booking)
		eng.HandleChoice(api.Choice{ID: "routine", Label: "Routine cleaning"})

		dentists := eng.GetCurrentCard().Dentists
		as.Require.Len(dentists, 3)
		eng.HandleEntitySelect(dentists[0].Entity())

		st := eng.GetState()
		as.FlowAt(st, flows.Booking, "processing")
		as.Equal("Dr. Sarah Chen", st.SelectedEntity.Name())
		as.Equal([]api.StepID{"reason", "dentists"}, st.StepHistory)

		progress := eng.GetCurrentCard()
		as.Equal("Today 2:00 PM", progress.Steps[1].Detail)
		as.Equal("Dr. Sarah Chen", progress.Steps[2].Detail)

		as.Eventually(func() bool {
			return env.Recorder.Count(api.EventFlowCompleted) == 1
		}, waitFor, "booking should complete")

		card := eng.GetCurrentCard()
		as.TaskCard(card, "done", api.CardConfirmation)
		as.Equal("Appointment Confirmed", card.Title)
		as.Equal("Dr. Sarah Chen", card.Subtitle)
		as.Equal([]api.Detail{
			{Label: "When", Value: "Today 2:00 PM"},
			{Label: "Where", Value: "123 Main St, Austin TX"},
			{Label: "Cost", Value: "$0 (covered)"},
		}, card.Details)
		as.Len(card.Actions, 2)

		as.Equal([]api.FlowID{flows.Booking}, eng.GetCompletedFlows())
		as.Equal([]api.Suggestion{
			api.Task("Reschedule appointment"),
			api.Task("Cancel appointment"),
		}, eng.GetUnlockedActions())
	})
}

func TestSevereBookingAutoAdvances(t *testing.T) {
	as := assert.New(t)

	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Booking)
		eng.HandleChoice(api.Choice{ID: "pain", Label: "Pain or discomfort"})
		eng.HandleChoice(api.Choice{ID: "severe", Label: "Can't eat or sleep"})

		history := eng.GetConversationHistory()
		as.Require.Len(history, 3)
		intro := history[2]
		as.Equal(api.EntryQA, intro.Type)
		as.Equal(api.StepID("dentistsIntro"), intro.StepID)
		as.NotEmpty(intro.Answer)

		as.Eventually(func() bool {
			st := eng.GetState()
			return st != nil && st.CurrentStep == "dentists"
		}, waitFor, "should advance to dentists")

		card := eng.GetCurrentCard()
		as.TaskCard(card, "dentists", api.CardDentists)
		as.Len(card.Dentists, env.Config.UrgentDentistCount)
		as.Equal([]api.StepID{"reason", "severity"}, eng.GetState().StepHistory)

		eng.GoBack()
		as.FlowAt(eng.GetState(), flows.Booking, "severity")
	})
}

func TestAutoAdvanceDiscardedByCancel(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		env.Register(t, helpers.NewAdvanceFlow(50*time.Millisecond))
		eng := env.Engine
		eng.StartFlow(helpers.AdvanceFlow)
		eng.HandleChoice(api.Choice{ID: "yes", Label: "Yes"})
		testify.Equal(t, api.StepID("info"), eng.GetState().CurrentStep)

		eng.CancelFlow()
		time.Sleep(150 * time.Millisecond)
		testify.Nil(t, eng.GetState())
		testify.Equal(t, 0, env.Recorder.Count(api.EventFlowCompleted))
	})
}

func TestAutoAdvanceTruncatedCancelsFlow(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		env.Register(t, helpers.NewAdvanceFlow(50*time.Millisecond))
		eng := env.Engine
		eng.StartFlow(helpers.AdvanceFlow)
		eng.HandleChoice(api.Choice{ID: "yes", Label: "Yes"})
		eng.TruncateConversation(0)

		testify.Nil(t, eng.GetState())
		testify.Equal(t, 1, env.Recorder.Count(api.EventFlowCancelled))

		time.Sleep(150 * time.Millisecond)
		testify.Nil(t, eng.GetState())
		testify.Len(t, eng.GetConversationHistory(), 1)
		testify.Equal(t, 0, env.Recorder.Count(api.EventFlowCompleted))
	})
}

func TestAutoAdvanceSurvivesTruncate(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		env.Register(t, helpers.NewAdvanceFlow(200*time.Millisecond))
		eng := env.Engine
		eng.StartFlow(helpers.AdvanceFlow)
		eng.HandleChoice(api.Choice{ID: "yes", Label: "Yes"})
		eng.AddQAEntry("How long?", "Not long", true)
		eng.TruncateConversation(1)

		testify.Len(t, eng.GetConversationHistory(), 2)
		testify.Eventually(t, func() bool {
			return env.Recorder.Count(api.EventFlowCompleted) == 1
		}, waitFor, tick)
		testify.Equal(t, api.StepID("done"), eng.GetState().CurrentStep)
		testify.Equal(t, 0, env.Recorder.Count(api.EventFlowCancelled))
	})
}

func TestBookingIntroTruncatedRestarts(t *testing.T) {
	slowAdvance := func(cfg *config.Config) {
		cfg.AutoAdvance = 100 * time.Millisecond
	}
	helpers.WithConfiguredEnv(t, slowAdvance, func(env *helpers.TestEngineEnv) {
		eng := env.Engine
		eng.StartFlow(flows.Booking)
		eng.HandleChoice(api.Choice{ID: "pain", Label: "Pain or discomfort"})
		eng.HandleChoice(api.Choice{ID: "severe", Label: "Can't eat or sleep"})
		require.Equal(t, api.StepID("dentistsIntro"), eng.GetState().CurrentStep)

		eng.TruncateConversation(0)
		testify.Nil(t, eng.GetState())
		testify.False(t, eng.IsFlowActive())

		time.Sleep(300 * time.Millisecond)
		testify.Nil(t, eng.GetState())
		testify.Len(t, eng.GetConversationHistory(), 1)

		eng.StartFlow(flows.Booking)
		testify.Equal(t, api.StepID("reason"), eng.GetState().CurrentStep)
		testify.Len(t, eng.GetConversationHistory(), 2)
	})
}

func TestAutoAdvanceIgnoresInput(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		env.Register(t, helpers.NewAdvanceFlow(30*time.Millisecond))
		eng := env.Engine
		eng.StartFlow(helpers.AdvanceFlow)
		eng.HandleChoice(api.Choice{ID: "yes", Label: "Yes"})
		eng.HandleChoice(api.Choice{ID: "yes", Label: "Yes"})
		testify.Equal(t, api.StepID("info"), eng.GetState().CurrentStep)

		testify.Eventually(t, func() bool {
			return env.Recorder.Count(api.EventFlowCompleted) == 1
		}, waitFor, tick)
		testify.Equal(t, api.StepID("done"), eng.GetState().CurrentStep)
		testify.Equal(t, []api.StepID{"ask"}, eng.GetState().StepHistory)
	})
}

func statuses(items []api.ProgressItem) []api.ProgressStatus {
	res := make([]api.ProgressStatus, len(items))
	for i, it := range items {
		res[i] = it.Status
	}
	return res
}

func addedEntry(
	env *helpers.TestEngineEnv, step api.StepID,
) *api.ConversationEntry {
	for _, ev := range env.Recorder.OfType(api.EventEntryAdded) {
		if e := ev.Data.(api.EntryAddedEvent).Entry; e.StepID == step {
			return e
		}
	}
	return nil
}

func doneEntries(env *helpers.TestEngineEnv) []api.Event {
	var res []api.Event
	for _, ev := range env.Recorder.OfType(api.EventEntryAdded) {
		if ev.Data.(api.EntryAddedEvent).Entry.StepID == "done" {
			res = append(res, ev)
		}
	}
	return res
}
