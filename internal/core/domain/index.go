package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Span maps one contiguous slice of a TextIndex's flattened text back to
// the text node that produced it. Offsets are byte offsets into Text.
type Span struct {
	// Node is the text node backing this slice.
	Node Node

	// Start is the inclusive byte offset of the slice in Text.
	Start int

	// End is the exclusive byte offset of the slice in Text.
	End int
}

// SpanSlice is the portion of a span intersecting a resolved range,
// with offsets local to the span's node text.
type SpanSlice struct {
	Span Span

	// LocalStart is the inclusive byte offset within the node's text.
	LocalStart int

	// LocalEnd is the exclusive byte offset within the node's text.
	LocalEnd int
}

// TextIndex is the flattened view of a document's visible text. Spans are
// sorted ascending by Start, non-overlapping, and their union exactly
// covers Text.
//
// The index also carries a whitespace-folded view of Text in which every
// whitespace run collapses to a single space. Anchors store normalized
// text, so matching runs against the folded view; resolved offsets are
// mapped back to raw offsets before any tree mutation.
//
// An index is only valid until the tree's node structure changes. Wrapping
// markers preserves the flattened text, so raw offsets survive a render,
// but the span table does not: rebuild before resolving each anchor and
// before rendering each block.
type TextIndex struct {
	// Text is the raw concatenation of the indexed text nodes.
	Text string

	// Spans is the ordered node back-reference table.
	Spans []Span

	folded       string
	foldToRaw    []int // raw start offset of each folded byte
	foldToRawEnd []int // exclusive raw end offset of each folded byte
}

// NewTextIndex assembles an index from the flattened text and its span
// table, precomputing the folded view.
func NewTextIndex(text string, spans []Span) *TextIndex {
	idx := &TextIndex{Text: text, Spans: spans}
	idx.fold()
	return idx
}

// fold builds the whitespace-collapsed view and its offset tables.
// Leading whitespace is dropped so no match can begin on a collapsed run.
func (idx *TextIndex) fold() {
	var out []byte
	var toRaw, toRawEnd []int

	raw := idx.Text
	inRun := false
	runStart := 0
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if unicode.IsSpace(r) {
			if !inRun {
				inRun = true
				runStart = i
			}
			i += size
			continue
		}
		if inRun {
			inRun = false
			if len(out) > 0 {
				out = append(out, ' ')
				toRaw = append(toRaw, runStart)
				toRawEnd = append(toRawEnd, i)
			}
		}
		for j := 0; j < size; j++ {
			out = append(out, raw[i+j])
			toRaw = append(toRaw, i+j)
			toRawEnd = append(toRawEnd, i+j+1)
		}
		i += size
	}

	idx.folded = string(out)
	idx.foldToRaw = toRaw
	idx.foldToRawEnd = toRawEnd
}

// Folded returns the whitespace-collapsed view of Text.
func (idx *TextIndex) Folded() string {
	return idx.folded
}

// RawRange maps a half-open range in the folded view back to raw byte
// offsets in Text.
func (idx *TextIndex) RawRange(foldStart, foldEnd int) (int, int, error) {
	if foldStart < 0 || foldEnd > len(idx.folded) || foldStart >= foldEnd {
		return 0, 0, fmt.Errorf("folded range [%d,%d): %w", foldStart, foldEnd, ErrOffsetOutOfRange)
	}
	return idx.foldToRaw[foldStart], idx.foldToRawEnd[foldEnd-1], nil
}

// Slice returns the raw text covered by [start, end).
func (idx *TextIndex) Slice(start, end int) string {
	return idx.Text[start:end]
}

// SpansIn returns the span slices intersecting the raw range [start, end),
// in document order, with node-local offsets.
func (idx *TextIndex) SpansIn(start, end int) []SpanSlice {
	var out []SpanSlice
	for _, sp := range idx.Spans {
		if sp.End <= start || sp.Start >= end {
			continue
		}
		ls, le := 0, sp.End-sp.Start
		if start > sp.Start {
			ls = start - sp.Start
		}
		if end < sp.End {
			le = end - sp.Start
		}
		out = append(out, SpanSlice{Span: sp, LocalStart: ls, LocalEnd: le})
	}
	return out
}
