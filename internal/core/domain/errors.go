package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Anchor resolution errors.

	// ErrAnchorUnresolved indicates an anchor matched no occurrence in the
	// current document, or failed the post-render text check. Callers drop
	// the anchor from the rendered set and log; this is never user-facing.
	ErrAnchorUnresolved = errors.New("anchor unresolved")

	// ErrEmptySelection indicates an add or quote was attempted with an
	// empty or too-short selection. Rejected before matching runs.
	ErrEmptySelection = errors.New("empty selection")

	// Persistence errors.

	// ErrDuplicateHighlight indicates an anchor with an identical
	// (text, prefix, suffix) triple is already stored. The add is rejected
	// before any mutation.
	ErrDuplicateHighlight = errors.New("duplicate highlight")

	// ErrPersistenceFailure indicates the highlight store could not be
	// reached or rejected the write. Any optimistic render is rolled back.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrSaveInFlight indicates an add or remove is already waiting on the
	// store. This is the busy flag, not a queue: the second operation is
	// rejected outright.
	ErrSaveInFlight = errors.New("save in flight")

	// ErrNoDocumentKey indicates the current document has no canonical key
	// mapping. Load and save are skipped entirely; this is not an error
	// surfaced to the user.
	ErrNoDocumentKey = errors.New("no document key")

	// Tree mutation errors.

	// ErrNotTextNode indicates a split was attempted on an element node.
	ErrNotTextNode = errors.New("not a text node")

	// ErrOffsetOutOfRange indicates a split offset outside the node's text.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)
