package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hilite-cli/internal/logger"
)

// Ensure HighlightService implements the interface.
var _ driving.HighlightService = (*HighlightService)(nil)

// HighlightService owns one document session: the cached highlight set for
// the session's document key, the render pipeline over the session's tree,
// and the optimistic add/remove flow against the store.
//
// The cache is explicit per-service state, never a package global, so one
// process can hold sessions for several documents at once.
type HighlightService struct {
	tree     driven.DocumentTree
	store    driven.HighlightStore
	indexer  *Indexer
	matcher  *Matcher
	renderer *Renderer

	key    string
	hasKey bool

	set        *domain.HighlightSet
	unresolved []string

	// mu guards the busy flag. Mutations are rejected, not queued: a
	// second add/remove while one is in flight gets ErrSaveInFlight, and
	// the flag check itself must be safe against callers that dispatch
	// mutations from their own goroutines.
	mu   sync.Mutex
	busy bool
}

// NewHighlightService creates a session for one document. The key resolver
// may be nil or fail to map the location; the session then skips load/save
// entirely and highlights stay session-local.
func NewHighlightService(
	tree driven.DocumentTree,
	location string,
	store driven.HighlightStore,
	keys driven.DocumentKeyResolver,
) *HighlightService {
	s := &HighlightService{
		tree:     tree,
		store:    store,
		indexer:  NewIndexer(),
		matcher:  NewMatcher(),
		renderer: NewRenderer(),
		set:      domain.NewHighlightSet(),
	}
	if keys != nil {
		s.key, s.hasKey = keys.Resolve(location)
	}
	return s
}

// Key returns the session's document key, or ErrNoDocumentKey when the
// document has no mapping and highlights stay session-local.
func (s *HighlightService) Key() (string, error) {
	if !s.hasKey {
		return "", domain.ErrNoDocumentKey
	}
	return s.key, nil
}

// begin claims the session for one mutation. Everything an add or remove
// touches (the cache, the tree, the store round trip) happens between
// begin and end; an overlapping mutation is rejected before it can read
// any of it.
func (s *HighlightService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return domain.ErrSaveInFlight
	}
	s.busy = true
	return nil
}

func (s *HighlightService) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Load fetches the persisted highlight set and caches it. Legacy anchors
// lacking ids receive deterministic ones; the assignment is not written
// back until the next save.
func (s *HighlightService) Load(ctx context.Context) error {
	if !s.hasKey || s.store == nil {
		s.set = domain.NewHighlightSet()
		return nil
	}

	set, err := s.store.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load highlights for %q: %w", s.key, err)
	}
	if set == nil {
		set = domain.NewHighlightSet()
	}
	if set.EnsureIDs() {
		logger.Debug("Assigned deterministic ids to legacy anchors for %s", s.key)
	}
	s.set = set
	return nil
}

// ApplyAll tears down all markers and re-renders the cached set: each
// anchor resolves against a freshly built index, resolved ranges are
// consolidated, and blocks render in document order. Anchors that fail to
// resolve (or fail the post-render check) are dropped from the rendered
// set and logged; they remain in the cache and get another chance on the
// next rebuild.
func (s *HighlightService) ApplyAll(_ context.Context) (*domain.ApplyReport, error) {
	if err := s.renderer.ClearAll(s.tree); err != nil {
		return nil, fmt.Errorf("clearing markers: %w", err)
	}

	var resolved []domain.ResolvedRange
	var dropped []string
	for _, anchor := range s.set.Highlights {
		// One marker application splits nodes and shifts every span after
		// it, so each anchor gets a fresh index. Resolving the whole batch
		// against one stale index is incorrect.
		idx := s.indexer.Build(s.tree)
		rng, err := s.matcher.Resolve(idx, anchor)
		if err != nil {
			logger.Debug("Anchor %s dropped: %v", anchor.ID, err)
			dropped = append(dropped, anchor.ID)
			continue
		}
		resolved = append(resolved, rng)
	}

	blocks := domain.Consolidate(resolved)
	rendered := 0
	for _, block := range blocks {
		idx := s.indexer.Build(s.tree)
		if _, err := s.renderer.RenderBlock(s.tree, idx, block); err != nil {
			logger.Debug("Block [%d,%d) dropped: %v", block.Start, block.End, err)
			dropped = append(dropped, block.MemberIDs...)
			continue
		}
		rendered++
	}

	s.unresolved = dropped
	return &domain.ApplyReport{
		Resolved: len(s.set.Highlights) - len(dropped),
		Blocks:   rendered,
		Dropped:  dropped,
	}, nil
}

// Add captures an anchor for the selected occurrence of text, renders it
// optimistically, appends it to the cached set and saves the whole set.
// On save failure the render and the cache mutation are both rolled back.
func (s *HighlightService) Add(ctx context.Context, text string, occurrence int) (*domain.HighlightAnchor, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	normalized := domain.NormalizeText(text)
	if len([]rune(normalized)) < domain.MinAnchorTextLength {
		return nil, domain.ErrEmptySelection
	}

	idx := s.indexer.Build(s.tree)
	foldStart, foldEnd, err := s.matcher.Locate(idx, normalized, occurrence)
	if err != nil {
		return nil, err
	}
	prefix, suffix := ContextAround(idx, foldStart, foldEnd)

	anchor := domain.NewAnchor(normalized, prefix, suffix)
	if s.set.HasTriple(anchor) {
		return nil, domain.ErrDuplicateHighlight
	}

	// Optimistic apply: mutate the cache, re-run the pipeline, then save.
	snapshot := s.set.Clone()
	s.set.Highlights = append(s.set.Highlights, anchor)
	if _, err := s.ApplyAll(ctx); err != nil {
		s.restore(ctx, snapshot)
		return nil, err
	}
	if s.isUnresolved(anchor.ID) {
		s.restore(ctx, snapshot)
		return nil, fmt.Errorf("new anchor did not survive render: %w", domain.ErrAnchorUnresolved)
	}

	if err := s.save(ctx); err != nil {
		s.restore(ctx, snapshot)
		return nil, err
	}
	return &anchor, nil
}

// Remove deletes the anchor with the given id, tears down its markers and
// saves. The same optimistic flow as Add, in reverse: on save failure the
// anchor and its markers come back.
func (s *HighlightService) Remove(ctx context.Context, id string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if s.set.Find(id) == nil {
		return fmt.Errorf("highlight %s: %w", id, domain.ErrNotFound)
	}

	snapshot := s.set.Clone()
	kept := s.set.Highlights[:0:0]
	for _, a := range s.set.Highlights {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.set.Highlights = kept

	// Markers owned by this anchor alone unwrap in place. A block shared
	// with other anchors has to shrink back to the surviving members, and
	// only a full re-render knows their new boundaries.
	if s.sharesBlock(id) {
		if _, err := s.ApplyAll(ctx); err != nil {
			s.restore(ctx, snapshot)
			return err
		}
	} else {
		if err := s.renderer.ClearAnchor(s.tree, id); err != nil {
			s.restore(ctx, snapshot)
			return err
		}
		s.dropUnresolved(id)
	}

	if err := s.save(ctx); err != nil {
		s.restore(ctx, snapshot)
		return err
	}
	return nil
}

// sharesBlock reports whether any marker carrying id also carries other
// anchor ids.
func (s *HighlightService) sharesBlock(id string) bool {
	for _, marker := range s.tree.Markers() {
		ids := s.tree.MarkerIDs(marker)
		if len(ids) < 2 {
			continue
		}
		for _, markerID := range ids {
			if markerID == id {
				return true
			}
		}
	}
	return false
}

// dropUnresolved forgets a removed anchor's entry in the last report.
func (s *HighlightService) dropUnresolved(id string) {
	kept := s.unresolved[:0:0]
	for _, dropped := range s.unresolved {
		if dropped != id {
			kept = append(kept, dropped)
		}
	}
	s.unresolved = kept
}

// List returns the cached anchors in capture order.
func (s *HighlightService) List() []domain.HighlightAnchor {
	out := make([]domain.HighlightAnchor, len(s.set.Highlights))
	copy(out, s.set.Highlights)
	return out
}

// Unresolved returns the ids dropped by the last ApplyAll.
func (s *HighlightService) Unresolved() []string {
	out := make([]string, len(s.unresolved))
	copy(out, s.unresolved)
	return out
}

// save writes the whole cached set. Sessions without a key mapping skip
// persistence silently; highlights stay session-local.
func (s *HighlightService) save(ctx context.Context) error {
	if !s.hasKey || s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.key, s.set); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

// restore reverts the cache to a snapshot and re-renders it, discarding
// whatever the failed operation put on screen.
func (s *HighlightService) restore(ctx context.Context, snapshot *domain.HighlightSet) {
	s.set = snapshot
	if _, err := s.ApplyAll(ctx); err != nil && !errors.Is(err, domain.ErrAnchorUnresolved) {
		logger.Debug("Rollback re-render failed: %v", err)
	}
}

func (s *HighlightService) isUnresolved(id string) bool {
	for _, dropped := range s.unresolved {
		if dropped == id {
			return true
		}
	}
	return false
}
