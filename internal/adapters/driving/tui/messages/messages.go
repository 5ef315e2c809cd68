// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/archivist/internal/core/domain"
)

// SearchCompleted carries a ranked hit list back to the model.
type SearchCompleted struct {
	Collection string
	Outcome    *domain.SearchOutcome
	Err        error
}

// AskCompleted carries an answer back to the model.
type AskCompleted struct {
	Result *domain.AskResult
	Err    error
}

// HitSelected opens a hit in the detail view.
type HitSelected struct {
	Hit domain.SearchHit
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input, results and answer view.
	ViewSearch ViewType = iota
	// ViewHit shows one hit in full.
	ViewHit
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewHit:
		return "hit"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
