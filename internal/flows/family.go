package flows

import (
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

// FamilyFlow adds a dependent to the member's plan from a single form
func FamilyFlow() *api.FlowDefinition {
	return builder.NewFlow(Family).
		WithDisplayName("Add a family member").
		WithIcon("users").
		WithStep(builder.NewFormStep("form",
			"Who would you like to add to your plan?").
			WithField(api.FormField{
				ID: "name", Label: "Full name", Placeholder: "Jane Doe",
			}).
			WithField(api.FormField{
				ID: "relationship", Label: "Relationship", Type: "select",
				Options: []string{"Spouse", "Child", "Domestic Partner"},
			}).
			WithField(api.FormField{
				ID: "dob", Label: "Date of birth", Placeholder: "MM/DD/YYYY",
			}).
			WithNext("processing")).
		WithStep(builder.NewProcessingStep("processing").
			WithAgentStep("Validating...", "Checking eligibility").
			WithAgentStep("Adding to plan...", "{formData.name}").
			WithAgentStep("Creating card...", "Member ID").
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Family Member Added").
			WithDetail("Name", "{formData.name}").
			WithDetail("Relationship", "{formData.relationship}").
			WithDetail("Coverage starts", "Immediately").
			WithDetail("Member ID", "SMK-{random}").
			WithAction("card", "View their card").
			WithNextSteps(
				api.Task("Book an appointment"),
				api.Info("Do they have the same benefits?"),
			)).
		WithStepQuestions("form",
			"Who counts as a dependent?",
			"What's the age limit for children?",
			"How much does it cost to add someone?",
		).
		WithStepQuestions("processing", familyFollowUps...).
		WithStepQuestions("done", familyFollowUps...).
		WithUnlockedActions(
			api.Task("View family member's card"),
			api.Task("Remove family member"),
		).
		Build()
}

var familyFollowUps = []string{
	"How long until they're covered?",
	"Do they get their own card?",
	"Do they have the same benefits?",
}
