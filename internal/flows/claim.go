package flows

import (
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

// ClaimFlow submits a claim from a receipt photo or upload
func ClaimFlow() *api.FlowDefinition {
	return builder.NewFlow(Claim).
		WithDisplayName("File a claim").
		WithIcon("receipt").
		WithStep(builder.NewChoicesStep("method",
			"How would you like to submit your claim?").
			WithChoice("photo", "Take a photo", "camera").
			WithChoice("upload", "Upload file", "upload").
			WithNext("processing")).
		WithStep(builder.NewProcessingStep("processing").
			WithAgentStep("Processing receipt...", "Reading document").
			WithAgentStep("Extracting info...", "Provider, date, amount").
			WithAgentStep("Submitting...", "To Smirk claims").
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Claim Submitted").
			WithDetail("Claim ID", "CLM-{random}").
			WithDetail("Amount", "$185.00").
			WithDetail("Status", "Processing (5-7 days)").
			WithAction("track", "Track status").
			WithAction("another", "File another").
			WithNextSteps(
				api.Info("What if it's denied?"),
				api.Task("Book an appointment"),
			)).
		WithStepQuestions("method",
			"What info do I need from my receipt?",
			"How long do I have to submit?",
			"What file formats work?",
		).
		WithStepQuestions("processing", claimFollowUps...).
		WithStepQuestions("done", claimFollowUps...).
		WithUnlockedActions(api.Task("Check claim status")).
		Build()
}

var claimFollowUps = []string{
	"How long until I hear back?",
	"How do I check claim status?",
	"What if it's denied?",
}
