package flows

import (
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

// CancelFlow cancels the booked appointment, or keeps it if the member
// changes their mind. Cancelling withdraws the booking's completion, which
// locks the follow-up actions booking unlocked
func CancelFlow() *api.FlowDefinition {
	return builder.NewFlow(Cancel).
		WithDisplayName("Cancel appointment").
		WithIcon("x-circle").
		RequiresCompleted(Booking).
		WithStep(builder.NewChoicesStep("confirm",
			"Are you sure you want to cancel your appointment?").
			WithChoice("yes", "Yes, cancel it", "check").
			WithChoice("no", "No, keep it", "x").
			WithBranch(map[string]api.StepID{"yes": "processing"}, "kept")).
		WithStep(builder.NewProcessingStep("processing").
			WithAgentStep("Cancelling appointment...", bookedDentist).
			WithAgentStep("Updating records...", "Removing from schedule").
			WithAgentStep("Sending notification...", "Confirmation email").
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Appointment Cancelled").
			WithDetail("Dentist", bookedDentist).
			WithDetail("Status", "Cancelled").
			WithDetail("Fee", "$0 (no charge)").
			WithAction("rebook", "Book new appointment").
			WithRevokes(Booking)).
		WithStep(builder.NewConfirmationStep("kept", "Appointment Kept").
			WithSubtitle(bookedDentist).
			WithDetail("When", "Today 4:30 PM").
			WithDetail("Where", bookedAddress).
			WithAction("details", "View details")).
		WithStepQuestions("confirm",
			"Will I be charged?",
			"Can I rebook later?",
		).
		WithStepQuestions("processing",
			"Will I get a confirmation?",
			"How do I rebook?",
		).
		WithStepQuestions("done",
			"How do I rebook?",
			"What's the cancellation policy?",
		).
		WithStepQuestions("kept",
			"Can I reschedule instead?",
			"What should I bring?",
		).
		Build()
}
