// Package library resolves document locations to canonical document keys.
//
// A document key is the slash-separated path of the document relative to
// the first configured library root containing it. Keys are what highlight
// sets are stored under, so they must be stable across machines: absolute
// paths and OS-specific separators never leak into them.
package library

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.DocumentKeyResolver = (*Resolver)(nil)

// Resolver maps absolute document paths to keys under configured roots.
type Resolver struct {
	roots []string
}

// NewResolver creates a resolver over the given library roots. Roots are
// cleaned and made absolute once, up front.
func NewResolver(roots []string) *Resolver {
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		cleaned = append(cleaned, abs)
	}
	return &Resolver{roots: cleaned}
}

// Resolve returns the document key for a location and whether a mapping
// exists. Locations outside every root have no key: the caller skips
// load/save entirely rather than erroring.
func (r *Resolver) Resolve(location string) (string, bool) {
	if location == "" {
		return "", false
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", false
	}

	for _, root := range r.roots {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		if rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}
