package driving

import (
	"context"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// HighlightService owns one document session: the cached highlight set,
// the render pipeline, and the optimistic add/remove flow.
type HighlightService interface {
	// Key returns the session's document key, or ErrNoDocumentKey when
	// the document has no mapping and highlights stay session-local.
	Key() (string, error)

	// Load fetches the persisted highlight set for the session document
	// and caches it. Documents without a key mapping load an empty set
	// and stay session-local; that is not an error.
	Load(ctx context.Context) error

	// ApplyAll tears down every rendered marker and re-renders the cached
	// set from scratch: resolve each anchor against a fresh index,
	// consolidate, render per block. Unresolvable anchors are dropped from
	// the rendered set and reported, never surfaced as errors.
	ApplyAll(ctx context.Context) (*domain.ApplyReport, error)

	// Add captures an anchor for the selected occurrence of text, renders
	// it optimistically, appends it to the cached set and saves. On save
	// failure the marker is unwrapped and the cache reverted: visible
	// state never diverges from persisted state.
	Add(ctx context.Context, text string, occurrence int) (*domain.HighlightAnchor, error)

	// Remove deletes the anchor with the given id using the same
	// optimistic-apply, rollback-on-failure flow in reverse.
	Remove(ctx context.Context, id string) error

	// List returns the cached anchors in capture order.
	List() []domain.HighlightAnchor

	// Unresolved returns the ids dropped by the last ApplyAll.
	Unresolved() []string
}
