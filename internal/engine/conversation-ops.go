package engine

import (
	"log/slog"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
)

// AddQAEntry appends a question and answer to the conversation. It is
// allowed with or without an active flow
func (e *Engine) AddQAEntry(question, answer string, isTaskClarification bool) {
	e.lock()
	defer e.unlock()
	e.addEntry(&api.ConversationEntry{
		Type:                api.EntryQA,
		Question:            question,
		Answer:              answer,
		IsTaskClarification: isTaskClarification,
	})
}

// ClearConversation empties the log and discards the active flow along
// with any pending processing. A discarded flow is reported as cancelled
func (e *Engine) ClearConversation() {
	e.lock()
	defer e.unlock()
	if !e.cancelFlow() {
		e.discardPending()
	}
	e.log.reset()
	slog.Debug("Conversation cleared")
}

// TruncateConversation keeps the entries up to and including index.
// Removing the progress entry of an in-flight processing sequence, or the
// entry of a step waiting to auto-advance, cancels the flow. Pending work
// whose entry survives carries on
func (e *Engine) TruncateConversation(index int) {
	e.lock()
	defer e.unlock()
	if !e.log.truncate(index) {
		return
	}
	slog.Debug("Conversation truncated", slog.Int("index", index))

	switch {
	case e.proc != nil && !e.log.contains(e.proc.entry.ID):
		slog.Info("Processing entry truncated",
			log.EntryID(e.proc.entry.ID))
		e.cancelFlow()
	case e.advancing != "" && !e.log.contains(e.advancing):
		slog.Info("Auto-advance entry truncated",
			log.EntryID(e.advancing))
		e.cancelFlow()
	}
}
