package server

import (
	"log/slog"

	"github.com/Heropr/ask-me-anything/internal/engine"
	"github.com/Heropr/ask-me-anything/internal/flows"
	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/events"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

// ActionFlows maps confirmation card action IDs to the flow they start
type ActionFlows map[string]api.FlowID

// DefaultActionFlows starts a fresh booking, claim, or family flow from
// the matching confirmation card actions
var DefaultActionFlows = ActionFlows{
	"rebook":     flows.Booking,
	"another":    flows.Claim,
	"addAnother": flows.Family,
}

// AttachActions subscribes to actionTriggered events and starts the flow
// mapped to the pressed action. Unmapped actions are only logged, the UI
// shell shows them as notices
func AttachActions(
	hub *events.Hub, eng *engine.Engine, targets ActionFlows,
) events.Unsubscribe {
	return events.On(hub, api.EventActionTriggered,
		func(ev api.ActionTriggeredEvent) {
			id, ok := targets[ev.Action.ID]
			if !ok {
				slog.Info("Action acknowledged",
					log.Action(ev.Action.ID),
					slog.String("label", ev.Action.Label))
				return
			}
			slog.Info("Action starts flow",
				log.Action(ev.Action.ID),
				log.FlowID(id))
			eng.StartFlow(id)
		},
	)
}
