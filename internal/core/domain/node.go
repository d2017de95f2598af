package domain

// NodeKind discriminates document tree node types. The engine only ever
// distinguishes text leaves from everything else.
type NodeKind int

// Node kinds.
const (
	// KindElement is a structural node that may carry children.
	KindElement NodeKind = iota

	// KindText is a leaf carrying document text.
	KindText
)

// Node is the read-only view of one node in a rendered document tree.
// The engine is agnostic to what backs it: a parsed HTML document, a
// server-rendered tree, or an in-memory model all work. Mutation lives on
// the DocumentTree driven port, not here.
type Node interface {
	// Kind reports whether this is a text leaf or an element.
	Kind() NodeKind

	// Tag returns the lowercase element name; empty for text nodes.
	Tag() string

	// Text returns the text content of a text node; empty for elements.
	Text() string

	// Parent returns the parent node, or nil at the root.
	Parent() Node

	// Children returns the node's children in document order.
	Children() []Node

	// Attr returns the value of the named attribute and whether it is set.
	// Text nodes have no attributes.
	Attr(name string) (string, bool)
}
