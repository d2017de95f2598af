package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// Matcher resolves a stored (text, prefix, suffix) anchor against the
// current TextIndex.
//
// Matching runs in the index's whitespace-folded view so a stored anchor
// survives reflowed whitespace; the winning occurrence is mapped back to
// raw offsets before anything touches the tree.
type Matcher struct{}

// NewMatcher creates a matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Resolve scans all left-to-right occurrences of the anchor text and
// returns the first one whose surrounding context matches the stored
// prefix and suffix. Duplicate quoted text with identical short context
// therefore resolves to the earliest occurrence; that tie-break is part of
// the persisted-anchor contract and must not be tightened.
//
// No passing occurrence wraps domain.ErrAnchorUnresolved; callers drop the
// anchor silently.
func (m *Matcher) Resolve(idx *domain.TextIndex, anchor domain.HighlightAnchor) (domain.ResolvedRange, error) {
	if err := anchor.Validate(); err != nil {
		return domain.ResolvedRange{}, err
	}

	folded := idx.Folded()
	needle := anchor.Text

	for from := 0; from+len(needle) <= len(folded); {
		rel := strings.Index(folded[from:], needle)
		if rel < 0 {
			break
		}
		at := from + rel
		if contextMatches(folded, at, at+len(needle), anchor.Prefix, anchor.Suffix) {
			start, end, err := idx.RawRange(at, at+len(needle))
			if err != nil {
				return domain.ResolvedRange{}, err
			}
			return domain.ResolvedRange{AnchorID: anchor.ID, Start: start, End: end}, nil
		}
		from = at + 1
	}

	return domain.ResolvedRange{}, fmt.Errorf("%q: %w", anchor.Text, domain.ErrAnchorUnresolved)
}

// Locate finds the nth (1-based) occurrence of the normalized text in the
// folded view, with no context filtering. Selection capture uses it to pin
// the occurrence the user actually picked before contexts are extracted.
func (m *Matcher) Locate(idx *domain.TextIndex, text string, occurrence int) (foldStart, foldEnd int, err error) {
	needle := domain.NormalizeText(text)
	if len(needle) < domain.MinAnchorTextLength {
		return 0, 0, domain.ErrEmptySelection
	}
	if occurrence < 1 {
		occurrence = 1
	}

	folded := idx.Folded()
	seen := 0
	for from := 0; from+len(needle) <= len(folded); {
		rel := strings.Index(folded[from:], needle)
		if rel < 0 {
			break
		}
		at := from + rel
		seen++
		if seen == occurrence {
			return at, at + len(needle), nil
		}
		from = at + 1
	}
	return 0, 0, fmt.Errorf("occurrence %d of %q: %w", occurrence, needle, domain.ErrNotFound)
}

// ContextAround captures the prefix and suffix snippets adjacent to an
// occurrence, bounded to domain.MaxContextLength runes. Snippets are taken
// from the folded view so boundary whitespace survives as a single space.
// Anchor capture and quote capture share this extraction.
func ContextAround(idx *domain.TextIndex, foldStart, foldEnd int) (prefix, suffix string) {
	folded := idx.Folded()
	prefix = domain.TailContext(folded[:foldStart])
	suffix = domain.HeadContext(folded[foldEnd:])
	return prefix, suffix
}

// contextMatches verifies the stored context around a candidate occurrence.
// Only the overlapping portion is compared: a document with less preceding
// text than the stored prefix is checked against the prefix's tail that
// fits, and symmetrically for the suffix. Boundary spaces next to the
// occurrence are ignored on both sides so anchors captured with or without
// the adjacent word gap compare the same.
func contextMatches(folded string, start, end int, prefix, suffix string) bool {
	if prefix != "" {
		before := strings.TrimRight(folded[:start], " ")
		want := strings.TrimRight(prefix, " ")
		if len(before) < len(want) {
			want = want[len(want)-len(before):]
		}
		if !strings.HasSuffix(before, want) {
			return false
		}
	}
	if suffix != "" {
		after := strings.TrimLeft(folded[end:], " ")
		want := strings.TrimLeft(suffix, " ")
		if len(after) < len(want) {
			want = want[:len(after)]
		}
		if !strings.HasPrefix(after, want) {
			return false
		}
	}
	return true
}
