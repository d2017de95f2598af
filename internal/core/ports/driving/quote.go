package driving

import "github.com/custodia-labs/hilite-cli/internal/core/domain"

// QuoteService builds portable citations from live selections. It reuses
// the matcher's context extraction but persists nothing.
type QuoteService interface {
	// Capture locates the selected occurrence of text in the session
	// document and returns its plain text, Markdown rendering and
	// text-fragment deep link.
	Capture(text string, occurrence int) (*domain.Quote, error)
}
