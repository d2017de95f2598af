package domtree

import (
	"golang.org/x/net/html"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// Ensure node implements the interface.
var _ domain.Node = (*node)(nil)

// node adapts one *html.Node to the domain's read-only node view.
type node struct {
	n *html.Node
}

func wrap(n *html.Node) domain.Node {
	if n == nil {
		return nil
	}
	return &node{n: n}
}

// Kind reports text leaves; everything else (elements, the document node,
// comments, doctypes) behaves as an element with zero or more children.
func (nd *node) Kind() domain.NodeKind {
	if nd.n.Type == html.TextNode {
		return domain.KindText
	}
	return domain.KindElement
}

// Tag returns the lowercase element name; empty for non-elements.
func (nd *node) Tag() string {
	if nd.n.Type != html.ElementNode {
		return ""
	}
	return nd.n.Data
}

// Text returns the text content of a text node.
func (nd *node) Text() string {
	if nd.n.Type != html.TextNode {
		return ""
	}
	return nd.n.Data
}

// Parent returns the parent node, or nil at the root.
func (nd *node) Parent() domain.Node {
	if nd.n.Parent == nil {
		return nil
	}
	return wrap(nd.n.Parent)
}

// Children returns the node's children in document order.
func (nd *node) Children() []domain.Node {
	var out []domain.Node
	for c := nd.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, wrap(c))
	}
	return out
}

// Attr returns the value of the named attribute.
func (nd *node) Attr(name string) (string, bool) {
	if nd.n.Type != html.ElementNode {
		return "", false
	}
	return attr(nd.n, name)
}
