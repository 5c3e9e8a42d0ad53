// Package status provides the status bar component for the chat TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady      State = "ready"
	StateThinking   State = "thinking"
	StateCompacting State = "compacting"
	StateError      State = "error"
)

// Bar displays the conversation state, history size and key hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	persona  string
	turns    int
	maxTurns int
	width    int
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

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	// the bar's horizontal padding takes two columns
	padding := s.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var status string
	switch s.state {
	case StateThinking:
		status = s.styles.Muted.Render("Thinking...")
	case StateCompacting:
		status = s.styles.Warning.Render("Compacting history...")
	case StateError:
		if s.message != "" {
			status = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			status = s.styles.Error.Render("Error")
		}
	default:
		if s.message != "" {
			status = s.styles.Success.Render(s.message)
		} else {
			status = s.styles.Muted.Render("Ready")
		}
	}

	return status + s.styles.Muted.Render(" | "+s.historyLabel())
}

// historyLabel shows the turn count against the compaction threshold.
func (s *Bar) historyLabel() string {
	label := fmt.Sprintf("%d turns", s.turns)
	if s.maxTurns > 0 {
		label = fmt.Sprintf("%d/%d turns", s.turns, s.maxTurns)
	}
	if s.persona != "" {
		label = s.persona + " | " + label
	}
	return label
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
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

// SetHistory records the current history size and compaction threshold.
func (s *Bar) SetHistory(turns, maxTurns int) {
	s.turns = turns
	s.maxTurns = maxTurns
}

// Turns returns the recorded history size.
func (s *Bar) Turns() int {
	return s.turns
}

// SetPersona sets the persona name shown in the bar.
func (s *Bar) SetPersona(persona string) {
	s.persona = persona
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the state and message.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
