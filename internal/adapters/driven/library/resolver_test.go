package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	r := NewResolver([]string{root})

	key, ok := r.Resolve(filepath.Join(root, "books", "moby-dick.html"))
	require.True(t, ok)
	assert.Equal(t, "books/moby-dick.html", key)
}

func TestResolver_Resolve_OutsideRoots(t *testing.T) {
	r := NewResolver([]string{t.TempDir()})

	_, ok := r.Resolve(filepath.Join(t.TempDir(), "elsewhere.html"))
	assert.False(t, ok)
}

func TestResolver_Resolve_FirstContainingRootWins(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "nested")

	r := NewResolver([]string{inner, outer})

	key, ok := r.Resolve(filepath.Join(inner, "doc.html"))
	require.True(t, ok)
	assert.Equal(t, "doc.html", key)
}

func TestResolver_Resolve_RootItself(t *testing.T) {
	root := t.TempDir()
	r := NewResolver([]string{root})

	_, ok := r.Resolve(root)
	assert.False(t, ok, "the root directory itself is not a document")
}

func TestResolver_Resolve_EmptyLocation(t *testing.T) {
	r := NewResolver([]string{t.TempDir()})

	_, ok := r.Resolve("")
	assert.False(t, ok)
}

func TestResolver_NoRoots(t *testing.T) {
	r := NewResolver(nil)

	_, ok := r.Resolve("/anything/doc.html")
	assert.False(t, ok)
}

func TestResolver_SkipsEmptyRoots(t *testing.T) {
	root := t.TempDir()
	r := NewResolver([]string{"", root})

	key, ok := r.Resolve(filepath.Join(root, "doc.html"))
	require.True(t, ok)
	assert.Equal(t, "doc.html", key)
}

func TestResolver_KeyIsSlashSeparated(t *testing.T) {
	root := t.TempDir()
	r := NewResolver([]string{root})

	key, ok := r.Resolve(filepath.Join(root, "a", "b", "c.html"))
	require.True(t, ok)
	assert.Equal(t, "a/b/c.html", key)
	assert.NotContains(t, key, "\\")
}
