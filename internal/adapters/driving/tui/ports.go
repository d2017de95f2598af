// Package tui provides an interactive terminal reader for hilite.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
)

// Ports aggregates everything the TUI needs to drive one document session.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Highlights owns the document's highlight set and render pipeline.
	Highlights driving.HighlightService

	// Navigator steps between rendered highlight blocks.
	Navigator driving.Navigator

	// Quotes builds citations from selections.
	Quotes driving.QuoteService

	// Tree is the live document tree the reader renders from.
	Tree driven.DocumentTree

	// Title is shown in the reader header, usually the document path.
	Title string

	// FocusID, when set, is the highlight to jump to on startup.
	FocusID string
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Highlights == nil {
		return ErrMissingHighlightService
	}
	if p.Navigator == nil {
		return ErrMissingNavigator
	}
	if p.Tree == nil {
		return ErrMissingTree
	}
	return nil
}
