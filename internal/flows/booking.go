package flows

import (
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/builder"
)

// BookingFlow walks the member through booking a dental appointment. Pain
// visits ask for severity first, and severe pain narrows the dentist list
// to those who can see the member right away
func BookingFlow() *api.FlowDefinition {
	return builder.NewFlow(Booking).
		WithDisplayName("Book an appointment").
		WithIcon("calendar").
		WithStep(builder.NewChoicesStep("reason", "What brings you in today?").
			WithChoice("routine", "Routine cleaning", "sparkles").
			WithChoice("pain", "Pain or discomfort", "alert").
			WithChoice("procedure", "Specific procedure", "clipboard").
			WithComputedNext(reasonNext, "severity", "dentists")).
		WithStep(builder.NewChoicesStep("severity", "How severe is the pain?").
			WithChoice("mild", "Mild discomfort", "smile").
			WithChoice("moderate", "Significant pain", "meh").
			WithChoice("severe", "Can't eat or sleep", "frown").
			WithNext("dentistsIntro")).
		WithStep(builder.NewStep("dentistsIntro", api.CardQA).
			WithContent(dentistsIntro).
			// zero delay defers to the engine's auto-advance setting
			WithAutoAdvance(0).
			WithNext("dentists")).
		WithStep(builder.NewStep("dentists", api.CardDentists).
			WithPrompt("Here's who can see you:").
			WithDataFilter(urgentFilter).
			WithNext("processing")).
		WithStep(builder.NewProcessingStep("processing").
			WithAgentStep("Checking coverage...", "Verifying benefits").
			WithAgentStep("Confirming slot...", "{entity.nextSlot}").
			WithAgentStep("Reserving...", "{entity.name}").
			WithNext("done")).
		WithStep(builder.NewConfirmationStep("done", "Appointment Confirmed").
			WithDetail("When", "{entity.nextSlot}").
			WithDetail("Where", "{entity.address}").
			WithDetail("Cost", "$0 (covered)").
			WithAction("calendar", "Add to calendar").
			WithAction("reminder", "Text reminder").
			WithNextSteps(
				api.Info("What should I bring?"),
				api.Info("What's covered in a routine visit?"),
			)).
		WithInitialStep("reason").
		WithStepQuestions("reason",
			"What counts as a dental emergency?",
			"Can I see a specialist directly?",
			"What's covered in a routine visit?",
		).
		WithStepQuestions("severity",
			"Should I go to urgent care instead?",
			"Is emergency care covered?",
			"How quickly can I be seen?",
		).
		WithStepQuestions("dentists",
			"How do I know they're in-network?",
			"Can I see ratings and reviews?",
			"What if I want a different time?",
		).
		WithStepQuestions("confirm",
			"Can I reschedule if needed?",
			"What should I bring?",
			"How early should I arrive?",
		).
		WithUnlockedActions(
			api.Task("Reschedule appointment"),
			api.Task("Cancel appointment"),
		).
		Build()
}

func reasonNext(ch *api.Choice, _ api.FlowState) api.StepID {
	if ch != nil && ch.ID == "pain" {
		return "severity"
	}
	return "dentists"
}

func isSevere(st api.FlowState) bool {
	return st.DataString("severityId") == "severe"
}

func dentistsIntro(st api.FlowState) api.QAContent {
	if isSevere(st) {
		return api.QAContent{Answer: "Finding who can see you right away..."}
	}
	return api.QAContent{Answer: "Finding dentists near you..."}
}

func urgentFilter(st api.FlowState) api.DentistFilter {
	return api.DentistFilter{UrgentOnly: isSevere(st)}
}
