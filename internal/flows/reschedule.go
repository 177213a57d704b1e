package flows

import (
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

const (
	bookedDentist = "Dr. Michael Rodriguez"
	bookedAddress = "456 Oak Ave, Austin TX"
)

var rescheduleTimes = map[string]string{
	"tomorrow": "Tomorrow 9:00 AM",
	"thisWeek": "Friday 2:00 PM",
	"nextWeek": "Monday 10:30 AM",
}

// RescheduleFlow moves the booked appointment to a new time
func RescheduleFlow() *api.FlowDefinition {
	return builder.NewFlow(Reschedule).
		WithDisplayName("Reschedule appointment").
		WithIcon("calendar").
		RequiresCompleted(Booking).
		WithStep(builder.NewChoicesStep("confirm",
			"When would you like to reschedule to?").
			WithChoice("tomorrow", "Tomorrow morning", "sunrise").
			WithChoice("thisWeek", "Later this week", "calendar").
			WithChoice("nextWeek", "Next week", "calendar-plus").
			WithNext("processing")).
		WithStep(builder.NewProcessingStep("processing").
			WithAgentStep("Checking availability...", "{choice.label}").
			WithAgentStep("Updating appointment...", bookedDentist).
			WithAgentStep("Sending confirmation...", "Email & SMS").
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Appointment Rescheduled").
			WithSubtitle(bookedDentist).
			WithComputedDetails(rescheduleDetails).
			WithAction("calendar", "Update calendar").
			WithAction("reminder", "Text reminder")).
		WithStepQuestions("confirm",
			"Can I reschedule again?",
			"What's the cancellation policy?",
		).
		WithStepQuestions("processing",
			"Will I get a confirmation?",
			"Can I change the dentist too?",
		).
		WithStepQuestions("done",
			"Can I reschedule again?",
			"What should I bring?",
		).
		Build()
}

func rescheduleDetails(st api.FlowState) []api.Detail {
	newTime, ok := rescheduleTimes[st.DataString("confirmId")]
	if !ok {
		newTime = rescheduleTimes["nextWeek"]
	}
	return []api.Detail{
		{Label: "New time", Value: newTime},
		{Label: "Location", Value: bookedAddress},
		{Label: "Cost", Value: "$0 (covered)"},
	}
}
