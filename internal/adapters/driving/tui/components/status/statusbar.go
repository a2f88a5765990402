// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
)

// State represents the search state for display.
type State string

const (
	StateReady      State = "ready"
	StateSearching  State = "searching"
	StateCancelling State = "cancelling"
	StateComplete   State = "complete"
	StateCancelled  State = "cancelled"
	StateError      State = "error"
)

// Running reports whether a session is still producing events.
func (s State) Running() bool {
	return s == StateSearching || s == StateCancelling
}

// Bar displays search status, running counts and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	matchCount int
	errorCount int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	counts := fmt.Sprintf("%d matches", s.matchCount)
	if s.errorCount > 0 {
		counts += fmt.Sprintf(", %d unreadable", s.errorCount)
	}

	switch s.state {
	case StateSearching:
		return s.styles.Warning.Render("Searching... ") + s.styles.Normal.Render(counts)
	case StateCancelling:
		return s.styles.Warning.Render("Stopping... ") + s.styles.Normal.Render(counts)
	case StateComplete:
		return s.styles.Success.Render("Complete ") + s.styles.Normal.Render(counts)
	case StateCancelled:
		return s.styles.Muted.Render("Cancelled ") + s.styles.Normal.Render(counts)
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	default:
		if s.message != "" {
			return s.styles.Muted.Render(s.message)
		}
		return s.styles.Muted.Render("Ready")
	}
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state.Running() {
		bindings = s.keymap.RunningHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
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

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCounts sets the running match and error counts.
func (s *Bar) SetCounts(matches, errors int) {
	s.matchCount = matches
	s.errorCount = errors
}

// MatchCount returns the displayed match count.
func (s *Bar) MatchCount() int {
	return s.matchCount
}

// ErrorCount returns the displayed error count.
func (s *Bar) ErrorCount() int {
	return s.errorCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.matchCount = 0
	s.errorCount = 0
}
