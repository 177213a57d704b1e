package api

import "slices"

type (
	// ConversationEntry is one item in the conversation log. Q&A entries
	// carry Question and Answer, task cards carry the rendered step payload
	ConversationEntry struct {
		ID                  EntryID        `json:"id"`
		Type                EntryType      `json:"type"`
		Question            string         `json:"question,omitempty"`
		Answer              string         `json:"answer,omitempty"`
		FlowID              FlowID         `json:"flow_id,omitempty"`
		StepID              StepID         `json:"step_id,omitempty"`
		CardType            CardType       `json:"card_type,omitempty"`
		Prompt              string         `json:"prompt,omitempty"`
		Title               string         `json:"title,omitempty"`
		Subtitle            string         `json:"subtitle,omitempty"`
		Choices             []Choice       `json:"choices,omitempty"`
		Dentists            []Dentist      `json:"dentists,omitempty"`
		Fields              []FormField    `json:"fields,omitempty"`
		Steps               []ProgressItem `json:"steps,omitempty"`
		Details             []Detail       `json:"details,omitempty"`
		Actions             []CardAction   `json:"actions,omitempty"`
		NextSteps           []Suggestion   `json:"next_steps,omitempty"`
		IsTaskClarification bool           `json:"is_task_clarification,omitempty"`
	}

	// ProgressItem is one agent step on a progress card with its status
	ProgressItem struct {
		Label  string         `json:"label"`
		Detail string         `json:"detail,omitempty"`
		Status ProgressStatus `json:"status"`
	}

	// ProgressStatus is the state of a single progress item. Status only
	// moves forward: pending, working, done
	ProgressStatus string
)

const (
	ProgressPending ProgressStatus = "pending"
	ProgressWorking ProgressStatus = "working"
	ProgressDone    ProgressStatus = "done"
)

var progressRank = map[ProgressStatus]int{
	ProgressPending: 0,
	ProgressWorking: 1,
	ProgressDone:    2,
}

// Clone returns a deep copy of the entry
func (e *ConversationEntry) Clone() *ConversationEntry {
	if e == nil {
		return nil
	}
	res := *e
	res.Choices = slices.Clone(e.Choices)
	res.Dentists = slices.Clone(e.Dentists)
	res.Fields = make([]FormField, len(e.Fields))
	for i, f := range e.Fields {
		f.Options = slices.Clone(f.Options)
		res.Fields[i] = f
	}
	if e.Fields == nil {
		res.Fields = nil
	}
	res.Steps = slices.Clone(e.Steps)
	res.Details = slices.Clone(e.Details)
	res.Actions = slices.Clone(e.Actions)
	res.NextSteps = slices.Clone(e.NextSteps)
	return &res
}

// IsTaskCard reports whether the entry renders a flow step
func (e *ConversationEntry) IsTaskCard() bool {
	return e.Type == EntryTaskCard
}

// NewProgressItems mirrors agent steps as progress items positioned at
// the given pointer: earlier items are done, the pointer item is working,
// and later items are pending. A pointer at or beyond the end marks every
// item done
func NewProgressItems(steps []AgentStep, pointer int) []ProgressItem {
	res := make([]ProgressItem, len(steps))
	for i, s := range steps {
		status := ProgressPending
		switch {
		case i < pointer:
			status = ProgressDone
		case i == pointer:
			status = ProgressWorking
		}
		res[i] = ProgressItem{
			Label:  s.Label,
			Detail: s.Detail,
			Status: status,
		}
	}
	return res
}

// Precedes reports whether moving from s to next never regresses
func (s ProgressStatus) Precedes(next ProgressStatus) bool {
	return progressRank[s] <= progressRank[next]
}
