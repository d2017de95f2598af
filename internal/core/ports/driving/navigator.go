package driving

import "github.com/custodia-labs/hilite-cli/internal/core/domain"

// Navigator walks rendered highlight blocks in document order. Every call
// re-derives the block list from the live tree, so rebuilds triggered
// elsewhere never leave a stale index behind.
type Navigator interface {
	// Next steps to the following block (wrapping if configured), scrolls
	// its first node into view and returns the progress snapshot.
	Next() (domain.Progress, error)

	// Previous steps to the preceding block.
	Previous() (domain.Progress, error)

	// Focus jumps to the block containing the given anchor id. Serves the
	// deep-link contract.
	Focus(id string) (domain.Progress, error)

	// Progress returns the current snapshot without moving.
	Progress() domain.Progress
}
