package driven

import "github.com/custodia-labs/hilite-cli/internal/core/domain"

// MarkerIDAttr is the attribute rendered markers carry. Its value is the
// comma-joined list of member anchor ids.
const MarkerIDAttr = "data-hilite-ids"

// ChromeAttr marks an element subtree as UI chrome. Text under it is
// invisible to the indexer.
const ChromeAttr = "data-hilite-ui"

// DocumentTree is the capability interface the render pipeline needs from
// a tree-like renderer. Any backend exposing node enumeration, text node
// splitting, and sibling wrapping can satisfy it; the engine never touches
// a platform API directly.
type DocumentTree interface {
	// Root returns the tree's root node.
	Root() domain.Node

	// SplitText splits a text node at the given byte offset, producing two
	// sibling text nodes. Offsets at the ends are rejected: splits must
	// never create zero-length fragments.
	SplitText(n domain.Node, offset int) (left, right domain.Node, err error)

	// Wrap replaces a text node with a marker element containing it,
	// tagged with the given anchor ids. Returns the marker.
	Wrap(n domain.Node, ids []string) (domain.Node, error)

	// Unwrap removes a marker element, re-attaching its children in place
	// and rejoining the sibling text nodes it had split apart. Markers are
	// never partially updated: teardown is always total.
	Unwrap(marker domain.Node) error

	// Markers returns all rendered marker elements in document order.
	Markers() []domain.Node

	// MarkerIDs returns the anchor ids a marker carries.
	MarkerIDs(marker domain.Node) []string
}
