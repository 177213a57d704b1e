package helpers

import (
	"time"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

// Test flow IDs
const (
	LinearFlow   api.FlowID = "linear"
	AdvanceFlow  api.FlowID = "advance"
	ScriptedFlow api.FlowID = "scripted"
)

// NewLinearFlow returns a two-choice flow that ends on a confirmation
// card: pick -> confirm
func NewLinearFlow() *api.FlowDefinition {
	return builder.NewFlow(LinearFlow).
		WithDisplayName("Linear").
		WithStep(builder.NewChoicesStep("pick", "Pick one").
			WithChoice("a", "Option A", "").
			WithChoice("b", "Option B", "").
			WithNext("confirm")).
		WithStep(builder.NewConfirmationStep("confirm", "Picked {data.pick}").
			WithDetail("Choice", "{choice.label}")).
		WithUnlockedActions(api.Task("Pick again")).
		Build()
}

// NewAdvanceFlow returns a flow whose second step is a Q&A step that
// moves on by itself after delay: ask -> info -> done
func NewAdvanceFlow(delay time.Duration) *api.FlowDefinition {
	return builder.NewFlow(AdvanceFlow).
		WithStep(builder.NewChoicesStep("ask", "Ready?").
			WithChoice("yes", "Yes", "").
			WithNext("info")).
		WithStep(builder.NewStep("info", api.CardQA).
			WithContent(func(api.FlowState) api.QAContent {
				return api.QAContent{Answer: "One moment"}
			}).
			WithAutoAdvance(delay).
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Done")).
		Build()
}

// NewScriptedFlow returns a flow whose first transition is chosen by a
// Lua script: ask -> (left | right)
func NewScriptedFlow() *api.FlowDefinition {
	return builder.NewFlow(ScriptedFlow).
		WithStep(builder.NewChoicesStep("ask", "Which way?").
			WithChoice("l", "Left", "").
			WithChoice("r", "Right", "").
			WithScript(`
				if choice_id == "l" then return "left" end
				if choice_id == "r" then return "right" end
				return nil
			`, "left", "right")).
		WithStep(builder.NewConfirmationStep("left", "Went left")).
		WithStep(builder.NewConfirmationStep("right", "Went right")).
		Build()
}
