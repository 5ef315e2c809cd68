// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateAnswering State = "answering"
	StateError     State = "error"
	StateResults   State = "results"
	StateAnswered  State = "answered"
)

// Bar displays the active collection, progress and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	collection string
	hitCount   int
	width      int
}

// NewBar creates a new status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	scope := ""
	if s.collection != "" {
		scope = s.styles.Subtitle.Render(s.collection) + " "
	}

	switch s.state {
	case StateSearching:
		return scope + s.styles.Muted.Render("Searching...")
	case StateAnswering:
		return scope + s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return scope + s.styles.Error.Render(s.message)
		}
		return scope + s.styles.Error.Render("Error")
	case StateResults, StateAnswered:
		return scope + s.styles.Normal.Render(fmt.Sprintf("%d results", s.hitCount))
	case StateReady:
	}
	return scope + s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if (s.state == StateResults || s.state == StateAnswered) && s.hitCount > 0 {
		bindings = s.keymap.ResultsHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the error message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCollection sets the collection shown on the left.
func (s *Bar) SetCollection(collection string) {
	s.collection = collection
}

// SetHitCount sets the hit count.
func (s *Bar) SetHitCount(count int) {
	s.hitCount = count
}

// HitCount returns the current hit count.
func (s *Bar) HitCount() int {
	return s.hitCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear resets the bar to ready, keeping the collection.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.hitCount = 0
}
