package api

type (
	// StartFlowRequest asks the engine to enter a flow
	StartFlowRequest struct {
		FlowID FlowID `json:"flow_id"`
	}

	// ChoiceRequest submits a choice on the current choices card
	ChoiceRequest struct {
		Choice Choice `json:"choice"`
	}

	// FormRequest submits the current form card
	FormRequest struct {
		Data map[string]any `json:"data"`
	}

	// EntityRequest selects an entity on the current card
	EntityRequest struct {
		Entity Entity `json:"entity"`
	}

	// ActionRequest presses a confirmation card action
	ActionRequest struct {
		Action CardAction `json:"action"`
	}

	// QARequest appends a Q&A entry to the conversation
	QARequest struct {
		Question            string `json:"question"`
		Answer              string `json:"answer"`
		IsTaskClarification bool   `json:"is_task_clarification"`
	}

	// AskRequest asks an explore-mode question
	AskRequest struct {
		Question string `json:"question"`
		Task     bool   `json:"task"`
	}

	// TruncateRequest truncates the conversation after the given index
	TruncateRequest struct {
		Index int `json:"index"`
	}

	// SessionResponse is the full read view of the engine
	SessionResponse struct {
		State          *FlowState           `json:"state"`
		CurrentCard    *ConversationEntry   `json:"current_card"`
		History        []*ConversationEntry `json:"history"`
		Questions      []string             `json:"questions"`
		Unlocked       []Suggestion         `json:"unlocked"`
		CompletedFlows []FlowID             `json:"completed_flows"`
		CanGoBack      bool                 `json:"can_go_back"`
		IsProcessing   bool                 `json:"is_processing"`
	}

	// AskResponse carries the answer to an explore or clarification
	// question along with the session after the Q&A entry was added
	AskResponse struct {
		Answer  string          `json:"answer"`
		Matched bool            `json:"matched"`
		Session SessionResponse `json:"session"`
	}

	// HistoryResponse lists the conversation log
	HistoryResponse struct {
		Entries []*ConversationEntry `json:"entries"`
		Count   int                  `json:"count"`
	}

	// QuestionsResponse lists suggested questions for the current step
	QuestionsResponse struct {
		Questions []string `json:"questions"`
		Count     int      `json:"count"`
	}

	// SuggestionsResponse lists suggestion chips
	SuggestionsResponse struct {
		Suggestions []Suggestion `json:"suggestions"`
		Count       int          `json:"count"`
	}

	// CompletedFlowsResponse lists completed flows in completion order
	CompletedFlowsResponse struct {
		Flows []FlowID `json:"flows"`
		Count int      `json:"count"`
	}

	// FlowSummary describes a registered flow
	FlowSummary struct {
		ID          FlowID `json:"id"`
		DisplayName string `json:"display_name"`
		Icon        string `json:"icon,omitempty"`
		CanStart    bool   `json:"can_start"`
	}

	// FlowsListResponse lists the registered flows
	FlowsListResponse struct {
		Flows []FlowSummary `json:"flows"`
		Count int           `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Version string `json:"version"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
