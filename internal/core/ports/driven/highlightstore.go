package driven

import (
	"context"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// HighlightStore persists the versioned highlight set for each document
// key. Saves always replace the whole set; there is no partial merge, no
// version check, and concurrent writers race last-write-wins.
type HighlightStore interface {
	// Load fetches the set stored under key. A key with nothing stored
	// returns (nil, nil), not an error.
	Load(ctx context.Context, key string) (*domain.HighlightSet, error)

	// Save stores the whole set under key, replacing any previous value.
	Save(ctx context.Context, key string, set *domain.HighlightSet) error
}

// DocumentKeyResolver maps a document's location to the canonical relative
// path its highlight set is stored under.
type DocumentKeyResolver interface {
	// Resolve returns the document key for a location and whether a
	// mapping exists. Locations without a mapping are never persisted.
	Resolve(location string) (string, bool)
}
