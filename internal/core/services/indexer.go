package services

import (
	"strings"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
)

// nonRenderable lists element names whose subtrees carry no visible text.
var nonRenderable = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"noscript": true,
	"template": true,
}

// Indexer flattens a document's visible text into a single string plus a
// node back-reference table.
//
// Applying one marker splits text nodes and invalidates the span table for
// everything after it, so callers must rebuild the index before resolving
// each anchor in a batch and before rendering each consolidated block.
// Resolving a whole batch against one stale index is incorrect.
type Indexer struct{}

// NewIndexer creates an indexer.
func NewIndexer() *Indexer {
	return &Indexer{}
}

// Build walks the tree depth-first and produces a fresh TextIndex over its
// visible text. Subtrees under non-renderable elements or under UI chrome
// (driven.ChromeAttr) are excluded. Marker elements wrap document text and
// are indexed like any other element.
func (ix *Indexer) Build(tree driven.DocumentTree) *domain.TextIndex {
	var b strings.Builder
	var spans []domain.Span

	var walk func(n domain.Node)
	walk = func(n domain.Node) {
		switch n.Kind() {
		case domain.KindText:
			text := n.Text()
			if text == "" {
				return
			}
			start := b.Len()
			b.WriteString(text)
			spans = append(spans, domain.Span{Node: n, Start: start, End: b.Len()})
		case domain.KindElement:
			if nonRenderable[n.Tag()] {
				return
			}
			if _, chrome := n.Attr(driven.ChromeAttr); chrome {
				return
			}
			for _, child := range n.Children() {
				walk(child)
			}
		}
	}
	walk(tree.Root())

	return domain.NewTextIndex(b.String(), spans)
}
