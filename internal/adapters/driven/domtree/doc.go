// Package domtree implements the DocumentTree capability interface over a
// parsed HTML document (golang.org/x/net/html).
//
// The core never sees an *html.Node: it works against domain.Node and the
// driven.DocumentTree mutations, so any other tree-like renderer can stand
// in. This adapter is the one the CLI and TUI use.
package domtree
