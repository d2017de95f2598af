package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

// fakeEndpoint is an in-memory stand-in for the key-value endpoint.
type fakeEndpoint struct {
	mu     sync.Mutex
	sets   map[string][]byte
	status int // when non-zero, every request returns this status
}

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{sets: make(map[string][]byte)}
}

func (f *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	// Document keys contain slashes and arrive path-escaped; the decoded
	// URL path would collapse them.
	key := r.URL.EscapedPath()
	switch r.Method {
	case http.MethodGet:
		body, ok := f.sets[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.sets[key] = body
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeEndpoint) {
	t.Helper()
	endpoint := newFakeEndpoint()
	srv := httptest.NewServer(endpoint)
	t.Cleanup(srv.Close)
	return NewWithClient(srv.URL, srv.Client()), endpoint
}

func TestStore_LoadAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	set, err := store.Load(context.Background(), "docs/missing.html")
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestStore_SaveLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	set := domain.NewHighlightSet()
	set.Highlights = append(set.Highlights, domain.NewAnchor("quoted text", "before ", " after"))
	require.NoError(t, store.Save(ctx, "docs/a.html", set))

	loaded, err := store.Load(ctx, "docs/a.html")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, set.Version, loaded.Version)
	require.Len(t, loaded.Highlights, 1)
	assert.Equal(t, set.Highlights[0].ID, loaded.Highlights[0].ID)
	assert.Equal(t, "quoted text", loaded.Highlights[0].Text)
}

func TestStore_Save_PutsWholeSet(t *testing.T) {
	store, endpoint := newTestStore(t)
	ctx := context.Background()

	set := domain.NewHighlightSet()
	set.Highlights = append(set.Highlights, domain.NewAnchor("ab", "", ""))
	require.NoError(t, store.Save(ctx, "docs/a.html", set))

	endpoint.mu.Lock()
	raw, ok := endpoint.sets["/docs%2Fa.html"]
	endpoint.mu.Unlock()
	require.True(t, ok, "save must PUT under the escaped document key")

	var stored domain.HighlightSet
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, domain.HighlightSetVersion, stored.Version)
}

func TestStore_KeyEscaping(t *testing.T) {
	store, endpoint := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "docs/sub dir/a.html", domain.NewHighlightSet()))

	endpoint.mu.Lock()
	defer endpoint.mu.Unlock()
	assert.Contains(t, endpoint.sets, "/docs%2Fsub%20dir%2Fa.html")
}

func TestStore_Load_ServerError(t *testing.T) {
	store, endpoint := newTestStore(t)
	endpoint.status = http.StatusInternalServerError

	_, err := store.Load(context.Background(), "docs/a.html")
	assert.ErrorContains(t, err, "500")
}

func TestStore_Save_ServerError(t *testing.T) {
	store, endpoint := newTestStore(t)
	endpoint.status = http.StatusBadGateway

	err := store.Save(context.Background(), "docs/a.html", domain.NewHighlightSet())
	assert.ErrorContains(t, err, "502")
}

func TestStore_Load_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	store := NewWithClient(srv.URL, srv.Client())
	set, err := store.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestStore_Load_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	t.Cleanup(srv.Close)

	store := NewWithClient(srv.URL, srv.Client())
	_, err := store.Load(context.Background(), "k")
	assert.ErrorContains(t, err, "decoding highlight set")
}

func TestStore_ContextCancellation(t *testing.T) {
	store, _ := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, "k")
	assert.Error(t, err)
}
