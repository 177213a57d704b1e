package api

import (
	"regexp"
	"strings"
)

type (
	// FlowID is the unique key of a flow definition
	FlowID string

	// StepID is the unique key of a step within a flow definition
	StepID string

	// EntryID uniquely identifies a conversation entry. IDs sort in creation
	// order
	EntryID string

	// CardType is the semantic shape of the content shown for a step
	CardType string

	// EntryType distinguishes plain Q&A entries from task cards
	EntryType string
)

const (
	CardChoices      CardType = "choices"
	CardDentists     CardType = "dentists"
	CardForm         CardType = "form"
	CardProgress     CardType = "progress"
	CardConfirmation CardType = "confirmation"
	CardQA           CardType = "qa"
)

const (
	EntryQA       EntryType = "qa"
	EntryTaskCard EntryType = "task-card"
)

// InvalidIDChars matches characters not permitted in flow and step IDs
var InvalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// CardTypes lists every card type the engine knows how to render
var CardTypes = []CardType{
	CardChoices, CardDentists, CardForm, CardProgress, CardConfirmation, CardQA,
}

// IsValid reports whether the card type is one of the known card types
func (c CardType) IsValid() bool {
	for _, ct := range CardTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// SanitizeID removes characters that are not permitted in flow and step
// IDs and trims surrounding whitespace
func SanitizeID[T ~string](id T) T {
	trimmed := strings.TrimSpace(string(id))
	return T(InvalidIDChars.ReplaceAllString(trimmed, ""))
}
