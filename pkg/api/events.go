package api

type (
	// Event is a single engine notification. Data holds the payload type
	// that matches Type
	Event struct {
		Data     any       `json:"data"`
		Type     EventType `json:"type"`
		Sequence int64     `json:"sequence"`
	}

	// EventType names a kind of engine notification
	EventType string

	// FlowStartedEvent is emitted when a flow is entered
	FlowStartedEvent struct {
		State  *FlowState `json:"state"`
		FlowID FlowID     `json:"flow_id"`
	}

	// FlowCompletedEvent is emitted when a flow reaches completion
	FlowCompletedEvent struct {
		State  *FlowState `json:"state"`
		FlowID FlowID     `json:"flow_id"`
	}

	// FlowCancelledEvent is emitted when the active flow is discarded
	FlowCancelledEvent struct {
		FlowID FlowID `json:"flow_id"`
	}

	// StepChangedEvent is emitted when the active flow moves to a new step
	StepChangedEvent struct {
		State        *FlowState `json:"state"`
		PreviousStep StepID     `json:"previous_step"`
	}

	// EntryAddedEvent is emitted when an entry is appended to the log.
	// State is nil when no flow is active
	EntryAddedEvent struct {
		Entry *ConversationEntry `json:"entry"`
		State *FlowState         `json:"state"`
	}

	// EntryUpdatedEvent is emitted when an existing entry changes in place
	EntryUpdatedEvent struct {
		Entry *ConversationEntry `json:"entry"`
	}

	// ProcessingStartedEvent is emitted when simulated processing begins
	ProcessingStartedEvent struct {
		State *FlowState `json:"state"`
	}

	// ProcessingCompletedEvent is emitted when every agent step is done
	ProcessingCompletedEvent struct {
		State *FlowState `json:"state"`
	}

	// ActionTriggeredEvent is emitted when a card action is pressed. State
	// is nil when no flow is active
	ActionTriggeredEvent struct {
		Action CardAction `json:"action"`
		State  *FlowState `json:"state"`
	}
)

const (
	EventFlowStarted         EventType = "flowStarted"
	EventFlowCompleted       EventType = "flowCompleted"
	EventFlowCancelled       EventType = "flowCancelled"
	EventStepChanged         EventType = "stepChanged"
	EventEntryAdded          EventType = "entryAdded"
	EventEntryUpdated        EventType = "entryUpdated"
	EventProcessingStarted   EventType = "processingStarted"
	EventProcessingCompleted EventType = "processingCompleted"
	EventActionTriggered     EventType = "actionTriggered"
)

// EventTypes lists every event kind the engine emits
var EventTypes = []EventType{
	EventFlowStarted,
	EventFlowCompleted,
	EventFlowCancelled,
	EventStepChanged,
	EventEntryAdded,
	EventEntryUpdated,
	EventProcessingStarted,
	EventProcessingCompleted,
	EventActionTriggered,
}
