package flows

import (
	"github.com/Heropr/ask-me-anything/internal/content"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

const (
	Booking      api.FlowID = "booking"
	Claim        api.FlowID = "claim"
	Family       api.FlowID = "family"
	Reschedule   api.FlowID = "reschedule"
	Cancel       api.FlowID = "cancel"
	RemoveFamily api.FlowID = "removeFamily"
)

// All returns freshly built definitions of every built-in flow
func All() []*api.FlowDefinition {
	return []*api.FlowDefinition{
		BookingFlow(),
		ClaimFlow(),
		FamilyFlow(),
		RescheduleFlow(),
		CancelFlow(),
		RemoveFamilyFlow(),
	}
}

// RegisterAll validates and registers every built-in flow
func RegisterAll(repo *content.Repository, sc content.ScriptChecker) error {
	for _, def := range All() {
		if err := repo.Register(def, sc); err != nil {
			return err
		}
	}
	return nil
}
