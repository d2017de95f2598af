package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
)

// Ensure Navigator implements the interface.
var _ driving.Navigator = (*Navigator)(nil)

// ScrollFunc brings a node into view. The driving adapter supplies it;
// a nil function makes navigation a pure state change.
type ScrollFunc func(domain.Node)

// navBlock is one navigable unit: the consecutive run of markers sharing a
// member id set, i.e. one rendered ConsolidatedBlock.
type navBlock struct {
	first domain.Node
	ids   []string
	key   string
}

// Navigator steps through rendered highlight blocks in document order with
// a live progress counter. The block list is re-derived from the tree on
// every call - never cached - so rebuilds triggered elsewhere cannot leave
// a stale index behind.
type Navigator struct {
	tree   driven.DocumentTree
	wrap   bool
	scroll ScrollFunc

	// currentKey identifies the focused block across re-derivations.
	// Positional indices would drift whenever a rebuild changes the list.
	currentKey string
}

// NewNavigator creates a navigator over the given tree. Wraparound at the
// ends is on by default in settings; scroll may be nil.
func NewNavigator(tree driven.DocumentTree, wrap bool, scroll ScrollFunc) *Navigator {
	return &Navigator{tree: tree, wrap: wrap, scroll: scroll}
}

// Next steps to the following block and returns the progress snapshot.
// With wraparound off, Next at the last block stays put.
func (n *Navigator) Next() (domain.Progress, error) {
	return n.step(1)
}

// Previous steps to the preceding block.
func (n *Navigator) Previous() (domain.Progress, error) {
	return n.step(-1)
}

// Focus jumps to the block containing the given anchor id, serving the
// deep-link contract. Unrendered ids (unresolved anchors) are not found.
func (n *Navigator) Focus(id string) (domain.Progress, error) {
	blocks := n.derive()
	for i, b := range blocks {
		for _, member := range b.ids {
			if member == id {
				return n.moveTo(blocks, i), nil
			}
		}
	}
	return n.snapshot(blocks, -1), fmt.Errorf("highlight %s not rendered: %w", id, domain.ErrNotFound)
}

// Progress returns the current snapshot without moving.
func (n *Navigator) Progress() domain.Progress {
	blocks := n.derive()
	return n.snapshot(blocks, n.indexOf(blocks))
}

func (n *Navigator) step(dir int) (domain.Progress, error) {
	blocks := n.derive()
	if len(blocks) == 0 {
		n.currentKey = ""
		return domain.Progress{}, nil
	}

	cur := n.indexOf(blocks)
	var next int
	switch {
	case cur < 0:
		// Nothing focused yet: next lands on the first block, previous on
		// the last.
		if dir > 0 {
			next = 0
		} else {
			next = len(blocks) - 1
		}
	default:
		next = cur + dir
		if next >= len(blocks) {
			if !n.wrap {
				next = len(blocks) - 1
			} else {
				next = 0
			}
		}
		if next < 0 {
			if !n.wrap {
				next = 0
			} else {
				next = len(blocks) - 1
			}
		}
	}

	return n.moveTo(blocks, next), nil
}

func (n *Navigator) moveTo(blocks []navBlock, i int) domain.Progress {
	n.currentKey = blocks[i].key
	if n.scroll != nil {
		n.scroll(blocks[i].first)
	}
	return n.snapshot(blocks, i)
}

func (n *Navigator) snapshot(blocks []navBlock, i int) domain.Progress {
	p := domain.Progress{Total: len(blocks)}
	if i >= 0 && i < len(blocks) {
		p.Current = i + 1
		p.CurrentID = blocks[i].ids[0]
	}
	return p
}

func (n *Navigator) indexOf(blocks []navBlock) int {
	if n.currentKey == "" {
		return -1
	}
	for i, b := range blocks {
		if b.key == n.currentKey {
			return i
		}
	}
	return -1
}

// derive groups the tree's markers into blocks: consecutive markers with
// an identical member id set belong to one rendered block.
func (n *Navigator) derive() []navBlock {
	var blocks []navBlock
	for _, marker := range n.tree.Markers() {
		ids := n.tree.MarkerIDs(marker)
		if len(ids) == 0 {
			continue
		}
		key := strings.Join(ids, ",")
		if len(blocks) > 0 && blocks[len(blocks)-1].key == key {
			continue
		}
		blocks = append(blocks, navBlock{first: marker, ids: ids, key: key})
	}
	return blocks
}
