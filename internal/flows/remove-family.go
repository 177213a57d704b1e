package flows

import (
	"strings"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

// RemoveFamilyFlow removes a dependent from the member's plan
func RemoveFamilyFlow() *api.FlowDefinition {
	return builder.NewFlow(RemoveFamily).
		WithDisplayName("Remove family member").
		WithIcon("user-minus").
		RequiresCompleted(Family).
		WithStep(builder.NewChoicesStep("confirm",
			"Which family member would you like to remove?").
			WithChoice("jane", "Jane Doe (Spouse)", "user").
			WithChoice("tom", "Tom Doe (Child)", "user").
			WithNext("processing")).
		WithStep(builder.NewProcessingStep("processing").
			WithAgentStep("Removing from plan...", "{choice.label}").
			WithAgentStep("Updating coverage...", "Adjusting benefits").
			WithAgentStep("Processing refund...", "Prorated amount").
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Family Member Removed").
			WithComputedDetails(removedDetails).
			WithAction("addAnother", "Add another member")).
		WithStepQuestions("confirm",
			"Will they lose coverage immediately?",
			"Is there a prorated refund?",
		).
		WithStepQuestions("processing",
			"When does coverage end?",
			"Will I get a confirmation?",
		).
		WithStepQuestions("done",
			"Can I add them back later?",
			"How is the refund processed?",
		).
		Build()
}

func removedDetails(st api.FlowState) []api.Detail {
	member := st.DataString("confirm")
	if member == "" {
		member = "Family member"
	}
	name, _, _ := strings.Cut(member, " (")
	return []api.Detail{
		{Label: "Member", Value: name},
		{Label: "Coverage ends", Value: "End of billing cycle"},
		{Label: "Refund", Value: "$12.50 (prorated)"},
	}
}
