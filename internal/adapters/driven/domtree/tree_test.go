package domtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

func parse(t *testing.T, body string) *Tree {
	t.Helper()
	tree, err := Parse(strings.NewReader(body), "mark")
	require.NoError(t, err)
	return tree
}

// firstText finds the first text node under the root whose content contains s.
func firstText(t *testing.T, tree *Tree, s string) domain.Node {
	t.Helper()
	var found domain.Node
	var walk func(n domain.Node)
	walk = func(n domain.Node) {
		if found != nil {
			return
		}
		if n.Kind() == domain.KindText && strings.Contains(n.Text(), s) {
			found = n
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree.Root())
	require.NotNil(t, found, "no text node containing %q", s)
	return found
}

func serialize(t *testing.T, tree *Tree) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, tree.Render(&b))
	return b.String()
}

func TestTree_SplitText(t *testing.T) {
	tree := parse(t, "<html><body><p>hello world</p></body></html>")
	text := firstText(t, tree, "hello")

	left, right, err := tree.SplitText(text, 5)
	require.NoError(t, err)

	assert.Equal(t, "hello", left.Text())
	assert.Equal(t, " world", right.Text())
	assert.Contains(t, serialize(t, tree), "<p>hello world</p>")
}

func TestTree_SplitText_Rejections(t *testing.T) {
	tree := parse(t, "<html><body><p>abc</p></body></html>")
	text := firstText(t, tree, "abc")

	tests := []struct {
		name   string
		offset int
	}{
		{name: "zero offset", offset: 0},
		{name: "negative offset", offset: -1},
		{name: "at end", offset: 3},
		{name: "past end", offset: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tree.SplitText(text, tt.offset)
			assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange)
		})
	}
}

func TestTree_SplitText_NotTextNode(t *testing.T) {
	tree := parse(t, "<html><body><p>abc</p></body></html>")

	_, _, err := tree.SplitText(tree.Root(), 1)
	assert.ErrorIs(t, err, domain.ErrNotTextNode)
}

func TestTree_Wrap(t *testing.T) {
	tree := parse(t, "<html><body><p>hello world</p></body></html>")
	text := firstText(t, tree, "hello")

	marker, err := tree.Wrap(text, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, "mark", marker.Tag())
	assert.Equal(t, []string{"a", "b"}, tree.MarkerIDs(marker))
	assert.Contains(t, serialize(t, tree),
		`<p><mark data-hilite-ids="a,b">hello world</mark></p>`)
}

func TestTree_Wrap_CustomTag(t *testing.T) {
	tree, err := Parse(strings.NewReader("<html><body><p>text</p></body></html>"), "em")
	require.NoError(t, err)

	marker, err := tree.Wrap(firstText(t, tree, "text"), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "em", marker.Tag())
}

func TestTree_Wrap_NotTextNode(t *testing.T) {
	tree := parse(t, "<html><body><p>abc</p></body></html>")

	_, err := tree.Wrap(tree.Root(), []string{"x"})
	assert.ErrorIs(t, err, domain.ErrNotTextNode)
}

func TestTree_Unwrap_MergesSplitNodes(t *testing.T) {
	tree := parse(t, "<html><body><p>one two three</p></body></html>")
	text := firstText(t, tree, "one")

	// Split out "two" and wrap it, as a render would.
	_, rest, err := tree.SplitText(text, 4)
	require.NoError(t, err)
	mid, _, err := tree.SplitText(rest, 3)
	require.NoError(t, err)
	marker, err := tree.Wrap(mid, []string{"h1"})
	require.NoError(t, err)
	require.Len(t, tree.Markers(), 1)

	require.NoError(t, tree.Unwrap(marker))

	assert.Empty(t, tree.Markers())
	assert.Contains(t, serialize(t, tree), "<p>one two three</p>")

	// The three fragments merged back into a single text node.
	merged := firstText(t, tree, "one")
	assert.Equal(t, "one two three", merged.Text())
}

func TestTree_Unwrap_Detached(t *testing.T) {
	tree := parse(t, "<html><body><p>text</p></body></html>")
	marker, err := tree.Wrap(firstText(t, tree, "text"), []string{"x"})
	require.NoError(t, err)

	require.NoError(t, tree.Unwrap(marker))
	err = tree.Unwrap(marker)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTree_Markers_DocumentOrder(t *testing.T) {
	tree := parse(t, "<html><body><p>alpha</p><p>beta</p><p>gamma</p></body></html>")

	for _, word := range []string{"gamma", "alpha", "beta"} {
		_, err := tree.Wrap(firstText(t, tree, word), []string{word})
		require.NoError(t, err)
	}

	markers := tree.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, []string{"alpha"}, tree.MarkerIDs(markers[0]))
	assert.Equal(t, []string{"beta"}, tree.MarkerIDs(markers[1]))
	assert.Equal(t, []string{"gamma"}, tree.MarkerIDs(markers[2]))
}

func TestTree_MarkerIDs_NonMarker(t *testing.T) {
	tree := parse(t, "<html><body><p>plain</p></body></html>")
	assert.Nil(t, tree.MarkerIDs(tree.Root()))
}

func TestTree_Render_RoundTrip(t *testing.T) {
	src := `<html><head></head><body><p>keep <b>structure</b> intact</p></body></html>`
	tree := parse(t, src)

	out := serialize(t, tree)
	assert.Contains(t, out, "<p>keep <b>structure</b> intact</p>")

	reparsed, err := Parse(strings.NewReader(out), "mark")
	require.NoError(t, err)
	assert.Equal(t, out, serialize(t, reparsed))
}

func TestNode_Attr(t *testing.T) {
	tree := parse(t, `<html><body><a href="https://example.com">link</a></body></html>`)
	link := firstText(t, tree, "link").Parent()

	href, ok := link.Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", href)

	_, ok = link.Attr("title")
	assert.False(t, ok)
}

func TestNode_ParentChain(t *testing.T) {
	tree := parse(t, "<html><body><p><b>deep</b></p></body></html>")
	text := firstText(t, tree, "deep")

	assert.Equal(t, "b", text.Parent().Tag())
	assert.Equal(t, "p", text.Parent().Parent().Tag())
}
