package domtree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
)

// Ensure Tree implements the interface.
var _ driven.DocumentTree = (*Tree)(nil)

// Tree adapts a parsed HTML document to the DocumentTree capability
// interface.
type Tree struct {
	root      *html.Node
	markerTag string
}

// Parse reads an HTML document. markerTag names the element used for
// rendered markers; empty means "mark".
func Parse(r io.Reader, markerTag string) (*Tree, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return NewTree(root, markerTag), nil
}

// NewTree adapts an already-parsed document.
func NewTree(root *html.Node, markerTag string) *Tree {
	if markerTag == "" {
		markerTag = "mark"
	}
	return &Tree{root: root, markerTag: markerTag}
}

// Render serializes the document, markers included.
func (t *Tree) Render(w io.Writer) error {
	return html.Render(w, t.root)
}

// Root returns the document root.
func (t *Tree) Root() domain.Node {
	return wrap(t.root)
}

// SplitText splits a text node at the given byte offset into two sibling
// text nodes. Offsets at either end would create a zero-length fragment
// and are rejected.
func (t *Tree) SplitText(n domain.Node, offset int) (domain.Node, domain.Node, error) {
	hn, err := unwrapNode(n)
	if err != nil {
		return nil, nil, err
	}
	if hn.Type != html.TextNode {
		return nil, nil, domain.ErrNotTextNode
	}
	if offset <= 0 || offset >= len(hn.Data) {
		return nil, nil, fmt.Errorf("split at %d of %d: %w", offset, len(hn.Data), domain.ErrOffsetOutOfRange)
	}

	right := &html.Node{Type: html.TextNode, Data: hn.Data[offset:]}
	hn.Data = hn.Data[:offset]
	hn.Parent.InsertBefore(right, hn.NextSibling)
	return wrap(hn), wrap(right), nil
}

// Wrap replaces a text node with a marker element containing it.
func (t *Tree) Wrap(n domain.Node, ids []string) (domain.Node, error) {
	hn, err := unwrapNode(n)
	if err != nil {
		return nil, err
	}
	if hn.Type != html.TextNode {
		return nil, domain.ErrNotTextNode
	}

	marker := &html.Node{
		Type:     html.ElementNode,
		Data:     t.markerTag,
		DataAtom: atom.Lookup([]byte(t.markerTag)),
		Attr: []html.Attribute{{
			Key: driven.MarkerIDAttr,
			Val: strings.Join(ids, ","),
		}},
	}

	parent := hn.Parent
	parent.InsertBefore(marker, hn)
	parent.RemoveChild(hn)
	marker.AppendChild(hn)
	return wrap(marker), nil
}

// Unwrap removes a marker element, re-attaching its children in place and
// rejoining the sibling text nodes splitting left behind.
func (t *Tree) Unwrap(marker domain.Node) error {
	hn, err := unwrapNode(marker)
	if err != nil {
		return err
	}
	parent := hn.Parent
	if parent == nil {
		return fmt.Errorf("marker already detached: %w", domain.ErrInvalidInput)
	}

	for hn.FirstChild != nil {
		child := hn.FirstChild
		hn.RemoveChild(child)
		parent.InsertBefore(child, hn)
	}
	parent.RemoveChild(hn)

	mergeTextChildren(parent)
	return nil
}

// Markers returns all rendered marker elements in document order.
func (t *Tree) Markers() []domain.Node {
	var out []domain.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := attr(n, driven.MarkerIDAttr); ok {
				out = append(out, wrap(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// MarkerIDs returns the anchor ids a marker carries.
func (t *Tree) MarkerIDs(marker domain.Node) []string {
	hn, err := unwrapNode(marker)
	if err != nil {
		return nil
	}
	raw, ok := attr(hn, driven.MarkerIDAttr)
	if !ok || raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// mergeTextChildren rejoins consecutive text-node children left behind by
// splits whose markers are gone.
func mergeTextChildren(parent *html.Node) {
	c := parent.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			parent.RemoveChild(next)
			continue // retry same node against the new next sibling
		}
		c = next
	}
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func unwrapNode(n domain.Node) (*html.Node, error) {
	nn, ok := n.(*node)
	if !ok || nn == nil || nn.n == nil {
		return nil, fmt.Errorf("foreign node: %w", domain.ErrInvalidInput)
	}
	return nn.n, nil
}
