// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady  State = "ready"
	StateAdding State = "adding"
	StateError  State = "error"
	StateNotice State = "notice"
)

// Bar displays highlight progress and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	progress domain.Progress
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

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	// The style's own horizontal padding counts against the bar width.
	padding := s.width - leftLen - rightLen - s.styles.StatusBar.GetHorizontalFrameSize()
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateAdding:
		return s.styles.Muted.Render("Type the text to highlight, enter to confirm")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateNotice:
		return s.styles.Success.Render(s.message)
	case StateReady:
	}

	if s.progress.Total == 0 {
		return s.styles.Muted.Render("No highlights")
	}
	if s.progress.Current == 0 {
		return s.styles.Normal.Render(fmt.Sprintf("%d highlight(s)", s.progress.Total))
	}
	return s.styles.Normal.Render(
		fmt.Sprintf("Highlight %d of %d", s.progress.Current, s.progress.Total),
	)
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

// SetProgress sets the navigation progress snapshot.
func (s *Bar) SetProgress(p domain.Progress) {
	s.progress = p
}

// Progress returns the current progress snapshot.
func (s *Bar) Progress() domain.Progress {
	return s.progress
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
}
