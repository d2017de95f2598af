package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/domtree"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// fixedKey resolves every location to itself, or to nothing when empty.
type fixedKey string

func (k fixedKey) Resolve(string) (string, bool) {
	return string(k), k != ""
}

const sessionDoc = "<html><body>" +
	"<p>The quick brown fox jumps over the lazy dog.</p> " +
	"<p>Pack my box with five dozen liquor jugs.</p>" +
	"</body></html>"

func newSession(t *testing.T, store *memory.HighlightStore) (*HighlightService, *domtree.Tree) {
	t.Helper()
	tree := parseDoc(t, sessionDoc)
	svc := NewHighlightService(tree, "docs/pangrams.html", store, fixedKey("docs/pangrams.html"))
	require.NoError(t, svc.Load(context.Background()))
	return svc, tree
}

func TestHighlightService_Key(t *testing.T) {
	tree := parseDoc(t, sessionDoc)

	keyed := NewHighlightService(tree, "x", memory.NewHighlightStore(), fixedKey("docs/x.html"))
	key, err := keyed.Key()
	require.NoError(t, err)
	assert.Equal(t, "docs/x.html", key)

	unkeyed := NewHighlightService(tree, "x", memory.NewHighlightStore(), fixedKey(""))
	_, err = unkeyed.Key()
	assert.ErrorIs(t, err, domain.ErrNoDocumentKey)

	nilResolver := NewHighlightService(tree, "x", memory.NewHighlightStore(), nil)
	_, err = nilResolver.Key()
	assert.ErrorIs(t, err, domain.ErrNoDocumentKey)
}

// gateStore blocks each Save until released, standing in for a slow
// persistence round trip.
type gateStore struct {
	inner   *memory.HighlightStore
	entered chan struct{}
	release chan struct{}
}

func (g *gateStore) Load(ctx context.Context, key string) (*domain.HighlightSet, error) {
	return g.inner.Load(ctx, key)
}

func (g *gateStore) Save(ctx context.Context, key string, set *domain.HighlightSet) error {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.Save(ctx, key, set)
}

func TestHighlightService_RejectsOverlappingMutation(t *testing.T) {
	store := &gateStore{
		inner:   memory.NewHighlightStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	tree := parseDoc(t, sessionDoc)
	svc := NewHighlightService(tree, "docs/pangrams.html", store, fixedKey("docs/pangrams.html"))
	require.NoError(t, svc.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Add(context.Background(), "quick brown fox", 1)
		done <- err
	}()
	<-store.entered // first add is mid-save

	_, err := svc.Add(context.Background(), "lazy dog", 1)
	assert.ErrorIs(t, err, domain.ErrSaveInFlight)
	assert.ErrorIs(t, svc.Remove(context.Background(), "any"), domain.ErrSaveInFlight)

	close(store.release)
	require.NoError(t, <-done)
	assert.Len(t, svc.List(), 1)
}

func TestHighlightService_Load_EmptyWhenAbsent(t *testing.T) {
	svc, _ := newSession(t, memory.NewHighlightStore())
	assert.Empty(t, svc.List())
}

func TestHighlightService_Add(t *testing.T) {
	store := memory.NewHighlightStore()
	svc, tree := newSession(t, store)

	anchor, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, anchor.ID)
	assert.Equal(t, "quick brown fox", anchor.Text)
	assert.Equal(t, "The ", anchor.Prefix)
	assert.Equal(t, " jumps over the lazy dog. Pack m", anchor.Suffix)

	markers := tree.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, []string{anchor.ID}, tree.MarkerIDs(markers[0]))

	// Persisted: a fresh session over the same key sees the anchor.
	reloaded, _ := newSession(t, store)
	require.Len(t, reloaded.List(), 1)
	assert.Equal(t, anchor.ID, reloaded.List()[0].ID)
}

func TestHighlightService_Add_RoundTrip(t *testing.T) {
	store := memory.NewHighlightStore()

	first, _ := newSession(t, store)
	_, err := first.Add(context.Background(), "five dozen liquor jugs", 1)
	require.NoError(t, err)

	// A new session re-resolves the stored anchor against a fresh tree.
	second, tree := newSession(t, store)
	report, err := second.ApplyAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 1, report.Blocks)
	assert.Empty(t, report.Dropped)
	assert.Len(t, tree.Markers(), 1)
}

func TestHighlightService_Add_NormalizesSelection(t *testing.T) {
	svc, _ := newSession(t, memory.NewHighlightStore())

	anchor, err := svc.Add(context.Background(), "  quick \n brown\tfox  ", 1)
	require.NoError(t, err)
	assert.Equal(t, "quick brown fox", anchor.Text)
}

func TestHighlightService_Add_Occurrence(t *testing.T) {
	tree := parseDoc(t, "<html><body><p>say cheese and say cheese again</p></body></html>")
	svc := NewHighlightService(tree, "docs/cheese.html", memory.NewHighlightStore(), fixedKey("docs/cheese.html"))
	require.NoError(t, svc.Load(context.Background()))

	anchor, err := svc.Add(context.Background(), "cheese", 2)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(anchor.Prefix, "and say "), anchor.Prefix)
	assert.Equal(t, " again", anchor.Suffix)

	// The captured context pins the second occurrence on re-render.
	assert.Contains(t, renderToString(t, tree),
		"say cheese and say <mark")

	require.NoError(t, svc.Remove(context.Background(), anchor.ID))
	assert.Empty(t, tree.Markers())
}

func TestHighlightService_Add_Duplicate(t *testing.T) {
	svc, _ := newSession(t, memory.NewHighlightStore())

	_, err := svc.Add(context.Background(), "lazy dog", 1)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), "lazy dog", 1)
	assert.ErrorIs(t, err, domain.ErrDuplicateHighlight)
	assert.Len(t, svc.List(), 1)
}

func TestHighlightService_Add_TextNotFound(t *testing.T) {
	svc, tree := newSession(t, memory.NewHighlightStore())

	_, err := svc.Add(context.Background(), "no such phrase", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, svc.List())
	assert.Empty(t, tree.Markers())
}

func TestHighlightService_Add_EmptySelection(t *testing.T) {
	svc, _ := newSession(t, memory.NewHighlightStore())

	_, err := svc.Add(context.Background(), "   ", 1)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestHighlightService_Add_RollbackOnSaveFailure(t *testing.T) {
	store := memory.NewHighlightStore()
	svc, tree := newSession(t, store)

	_, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)

	store.FailSaves = true
	_, err = svc.Add(context.Background(), "lazy dog", 1)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)

	// Cache and render are back to the last saved state.
	assert.Len(t, svc.List(), 1)
	assert.Equal(t, "quick brown fox", svc.List()[0].Text)
	require.Len(t, tree.Markers(), 1)

	store.FailSaves = false
	reloaded, _ := newSession(t, store)
	assert.Len(t, reloaded.List(), 1)
}

func TestHighlightService_Remove(t *testing.T) {
	store := memory.NewHighlightStore()
	svc, tree := newSession(t, store)

	keep, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)
	drop, err := svc.Add(context.Background(), "liquor jugs", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), drop.ID))

	require.Len(t, svc.List(), 1)
	assert.Equal(t, keep.ID, svc.List()[0].ID)
	markers := tree.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, []string{keep.ID}, tree.MarkerIDs(markers[0]))

	reloaded, _ := newSession(t, store)
	assert.Len(t, reloaded.List(), 1)
}

func TestHighlightService_Remove_Unknown(t *testing.T) {
	svc, _ := newSession(t, memory.NewHighlightStore())

	err := svc.Remove(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHighlightService_Remove_RollbackOnSaveFailure(t *testing.T) {
	store := memory.NewHighlightStore()
	svc, tree := newSession(t, store)

	anchor, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)

	store.FailSaves = true
	err = svc.Remove(context.Background(), anchor.ID)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)

	// The anchor and its markers come back.
	assert.Len(t, svc.List(), 1)
	assert.Len(t, tree.Markers(), 1)
}

func TestHighlightService_Remove_SharedBlockReshrinks(t *testing.T) {
	svc, tree := newSession(t, memory.NewHighlightStore())

	keep, err := svc.Add(context.Background(), "quick brown", 1)
	require.NoError(t, err)
	drop, err := svc.Add(context.Background(), "brown fox", 1)
	require.NoError(t, err)

	// Overlapping anchors render as one block carrying both ids.
	markers := tree.Markers()
	require.Len(t, markers, 1)
	require.Len(t, tree.MarkerIDs(markers[0]), 2)

	require.NoError(t, svc.Remove(context.Background(), drop.ID))

	// The block shrinks back to the survivor's own range.
	markers = tree.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, []string{keep.ID}, tree.MarkerIDs(markers[0]))
	assert.Contains(t, renderToString(t, tree), ">quick brown</mark> fox")
}

func TestHighlightService_ApplyAll_Idempotent(t *testing.T) {
	svc, tree := newSession(t, memory.NewHighlightStore())

	_, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)

	first := renderToString(t, tree)
	report, err := svc.ApplyAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, first, renderToString(t, tree))
}

func TestHighlightService_ApplyAll_DropsUnresolved(t *testing.T) {
	store := memory.NewHighlightStore()

	set := domain.NewHighlightSet()
	good := domain.NewAnchor("lazy dog", "over the ", ".")
	stale := domain.NewAnchor("phrase that was edited away", "", "")
	set.Highlights = append(set.Highlights, good, stale)
	require.NoError(t, store.Save(context.Background(), "docs/pangrams.html", set))

	svc, tree := newSession(t, store)
	report, err := svc.ApplyAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 1, report.Blocks)
	assert.Equal(t, []string{stale.ID}, report.Dropped)
	assert.Equal(t, []string{stale.ID}, svc.Unresolved())
	assert.Len(t, tree.Markers(), 1)

	// Dropped anchors stay cached for the next rebuild.
	assert.Len(t, svc.List(), 2)
}

func TestHighlightService_ApplyAll_OverlappingAnchorsShareBlock(t *testing.T) {
	store := memory.NewHighlightStore()

	set := domain.NewHighlightSet()
	a := domain.NewAnchor("quick brown", "The ", " fox")
	b := domain.NewAnchor("brown fox", "quick ", " jumps")
	set.Highlights = append(set.Highlights, a, b)
	require.NoError(t, store.Save(context.Background(), "docs/pangrams.html", set))

	svc, tree := newSession(t, store)
	report, err := svc.ApplyAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Resolved)
	assert.Equal(t, 1, report.Blocks)

	markers := tree.Markers()
	require.Len(t, markers, 1)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, tree.MarkerIDs(markers[0]))
}

func TestHighlightService_Load_AssignsLegacyIDs(t *testing.T) {
	store := memory.NewHighlightStore()

	legacy := domain.HighlightAnchor{Text: "lazy dog", Prefix: "over the ", Suffix: "."}
	set := domain.NewHighlightSet()
	set.Highlights = append(set.Highlights, legacy)
	require.NoError(t, store.Save(context.Background(), "docs/pangrams.html", set))

	svc, _ := newSession(t, store)
	require.Len(t, svc.List(), 1)
	assert.Equal(t, legacy.DeterministicID(), svc.List()[0].ID)
}

func TestHighlightService_NoKey_SessionLocal(t *testing.T) {
	store := memory.NewHighlightStore()
	tree := parseDoc(t, sessionDoc)
	svc := NewHighlightService(tree, "/tmp/outside.html", store, fixedKey(""))
	require.NoError(t, svc.Load(context.Background()))

	anchor, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)

	// Rendered and cached, but never persisted.
	assert.Len(t, tree.Markers(), 1)
	assert.Len(t, svc.List(), 1)
	assert.Equal(t, 0, store.Len())

	require.NoError(t, svc.Remove(context.Background(), anchor.ID))
	assert.Equal(t, 0, store.Len())
}

func TestHighlightService_List_ReturnsCopy(t *testing.T) {
	svc, _ := newSession(t, memory.NewHighlightStore())

	_, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)

	list := svc.List()
	list[0].Text = "mutated"
	assert.Equal(t, "quick brown fox", svc.List()[0].Text)
}

func TestHighlightService_Add_MarkerSurvivesSerialization(t *testing.T) {
	svc, tree := newSession(t, memory.NewHighlightStore())

	anchor, err := svc.Add(context.Background(), "quick brown fox", 1)
	require.NoError(t, err)

	out := renderToString(t, tree)
	assert.True(t, strings.Contains(out,
		`<mark data-hilite-ids="`+anchor.ID+`">quick brown fox</mark>`), out)
}
