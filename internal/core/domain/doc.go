// Package domain defines the core business entities for Hilite.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - HighlightAnchor: A persisted (text, prefix, suffix) triple locating a selection
//   - HighlightSet: The versioned anchor list for one document key
//   - TextIndex: A flattened character-offset view of a document's visible text
//   - ResolvedRange / ConsolidatedBlock: Ephemeral offset ranges recomputed per load
//   - Quote: A portable citation built from a live selection
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library and github.com/google/uuid only
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
