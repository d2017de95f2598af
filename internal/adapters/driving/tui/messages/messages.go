// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewReader is the document reader view.
	ViewReader ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewReader:
		return "reader"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// HighlightsApplied carries the result of a full render pass.
type HighlightsApplied struct {
	Report *domain.ApplyReport
	Err    error
}

// HighlightAdded signals a highlight was captured and saved.
type HighlightAdded struct {
	Anchor *domain.HighlightAnchor
	Err    error
}

// HighlightRemoved signals a highlight was removed.
type HighlightRemoved struct {
	ID  string
	Err error
}

// QuoteCaptured carries a citation built from the current selection.
type QuoteCaptured struct {
	Quote *domain.Quote
	Err   error
}

// NavigationMoved carries the progress snapshot after a navigation step.
type NavigationMoved struct {
	Progress domain.Progress
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
