package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
)

// Renderer materializes consolidated blocks as marker elements by splitting
// text nodes in place at block boundaries.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderBlock splits text nodes exactly at the block's raw offsets and
// wraps the covered sub-nodes in marker elements carrying the block's
// member ids. Sub-segments of pure whitespace are never wrapped alone;
// their text still participates in the post-render check so a highlight
// crossing a paragraph boundary verifies cleanly.
//
// After wrapping, the rendered text is read back and compared
// (whitespace-normalized) against the text the block was resolved over.
// On mismatch every marker just created is unwrapped and the block is
// reported unresolved: drifted offsets must never leave a corrupted tree.
//
// The index must be fresh for the current tree. Earlier renders preserve
// the flattened text, so block offsets stay valid; the span table does not.
func (r *Renderer) RenderBlock(tree driven.DocumentTree, idx *domain.TextIndex, block domain.ConsolidatedBlock) ([]domain.Node, error) {
	slices := idx.SpansIn(block.Start, block.End)
	if len(slices) == 0 {
		return nil, fmt.Errorf("block [%d,%d) covers no nodes: %w", block.Start, block.End, domain.ErrAnchorUnresolved)
	}

	var markers []domain.Node
	var readback strings.Builder

	for _, sl := range slices {
		target := sl.Span.Node
		text := target.Text()

		// Split off the tail first so the start offset stays valid.
		if sl.LocalEnd < len(text) {
			left, _, err := tree.SplitText(target, sl.LocalEnd)
			if err != nil {
				r.unwrapAll(tree, markers)
				return nil, err
			}
			target = left
		}
		if sl.LocalStart > 0 {
			_, right, err := tree.SplitText(target, sl.LocalStart)
			if err != nil {
				r.unwrapAll(tree, markers)
				return nil, err
			}
			target = right
		}

		segment := target.Text()
		if strings.TrimSpace(segment) == "" {
			readback.WriteString(segment)
			continue
		}

		marker, err := tree.Wrap(target, block.MemberIDs)
		if err != nil {
			r.unwrapAll(tree, markers)
			return nil, err
		}
		markers = append(markers, marker)
		readback.WriteString(renderedText(marker))
	}

	if len(markers) == 0 {
		return nil, fmt.Errorf("block [%d,%d) is pure whitespace: %w", block.Start, block.End, domain.ErrAnchorUnresolved)
	}

	expected := domain.NormalizeText(idx.Slice(block.Start, block.End))
	if domain.NormalizeText(readback.String()) != expected {
		r.unwrapAll(tree, markers)
		return nil, fmt.Errorf("post-render text mismatch: %w", domain.ErrAnchorUnresolved)
	}

	return markers, nil
}

// ClearAll tears down every rendered marker. Markers are never partially
// updated: a re-render always starts from a clean tree.
func (r *Renderer) ClearAll(tree driven.DocumentTree) error {
	for _, marker := range tree.Markers() {
		if err := tree.Unwrap(marker); err != nil {
			return err
		}
	}
	return nil
}

// ClearAnchor tears down only the markers that carry the given anchor id.
// Blocks the anchor shared with others are re-rendered by the caller.
func (r *Renderer) ClearAnchor(tree driven.DocumentTree, id string) error {
	for _, marker := range tree.Markers() {
		for _, markerID := range tree.MarkerIDs(marker) {
			if markerID == id {
				if err := tree.Unwrap(marker); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

func (r *Renderer) unwrapAll(tree driven.DocumentTree, markers []domain.Node) {
	for _, m := range markers {
		_ = tree.Unwrap(m)
	}
}

// renderedText reads the visible text under a node from the live tree.
func renderedText(n domain.Node) string {
	if n.Kind() == domain.KindText {
		return n.Text()
	}
	var b strings.Builder
	for _, child := range n.Children() {
		b.WriteString(renderedText(child))
	}
	return b.String()
}
