package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Anchor constraints.
const (
	// MinAnchorTextLength is the minimum length (in runes) of the
	// normalized anchor text. Single characters are too ambiguous to
	// re-resolve reliably.
	MinAnchorTextLength = 2

	// MaxContextLength is the maximum length (in runes) of the prefix and
	// suffix context snippets captured adjacent to a selection.
	MaxContextLength = 32
)

// anchorIDNamespace is the fixed UUIDv5 namespace for deterministic ids of
// legacy anchors persisted before ids existed. Changing it would re-id
// every legacy entry, so it never changes.
var anchorIDNamespace = uuid.MustParse("9c9eaf1c-5b01-4dc7-94a6-31a0d2ac5f8a")

// HighlightAnchor is a location-independent description of a user selection.
// It survives complete rebuilds of the document tree: the text plus its
// surrounding context is re-matched against a fresh TextIndex on every load.
type HighlightAnchor struct {
	// ID uniquely identifies the anchor. Stable across edits.
	ID string `json:"id"`

	// Text is the whitespace-normalized selected text. Never empty.
	Text string `json:"text"`

	// Prefix is up to MaxContextLength runes of normalized text
	// immediately preceding the original selection.
	Prefix string `json:"prefix,omitempty"`

	// Suffix is up to MaxContextLength runes of normalized text
	// immediately following the original selection.
	Suffix string `json:"suffix,omitempty"`

	// CreatedAt is when the anchor was captured.
	CreatedAt time.Time `json:"created_at"`
}

// NewAnchor builds an anchor from an already-normalized selection and its
// context snippets, assigning a fresh random id.
func NewAnchor(text, prefix, suffix string) HighlightAnchor {
	return HighlightAnchor{
		ID:        uuid.New().String(),
		Text:      text,
		Prefix:    prefix,
		Suffix:    suffix,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the anchor invariants.
func (a HighlightAnchor) Validate() error {
	if utf8.RuneCountInString(a.Text) < MinAnchorTextLength {
		return ErrEmptySelection
	}
	if a.Text != NormalizeText(a.Text) {
		return ErrInvalidInput
	}
	return nil
}

// SameTriple reports whether two anchors describe the identical
// (text, prefix, suffix) selection. Used for exact-match duplicate
// rejection; there is deliberately no fuzzy dedup.
func (a HighlightAnchor) SameTriple(other HighlightAnchor) bool {
	return a.Text == other.Text && a.Prefix == other.Prefix && a.Suffix == other.Suffix
}

// DeterministicID derives the stable id a legacy anchor (persisted without
// one) receives on first load. Identical triples yield identical ids, so
// repeated loads agree without writing back.
func (a HighlightAnchor) DeterministicID() string {
	payload := a.Text + "\x00" + a.Prefix + "\x00" + a.Suffix
	return uuid.NewSHA1(anchorIDNamespace, []byte(payload)).String()
}

// HighlightSetVersion is the current persisted schema version.
const HighlightSetVersion = 1

// HighlightSet is the versioned anchor list persisted for one document key.
// It is cached per session and always written back as a whole; there is no
// partial merge.
type HighlightSet struct {
	// Version is the persisted schema version.
	Version int `json:"version"`

	// Highlights are the stored anchors in capture order.
	Highlights []HighlightAnchor `json:"highlights"`
}

// NewHighlightSet returns an empty set at the current version.
func NewHighlightSet() *HighlightSet {
	return &HighlightSet{Version: HighlightSetVersion}
}

// EnsureIDs assigns deterministic ids to legacy entries lacking one.
// Returns true if any anchor was modified.
func (s *HighlightSet) EnsureIDs() bool {
	changed := false
	for i := range s.Highlights {
		if s.Highlights[i].ID == "" {
			s.Highlights[i].ID = s.Highlights[i].DeterministicID()
			changed = true
		}
	}
	return changed
}

// Find returns the anchor with the given id, or nil.
func (s *HighlightSet) Find(id string) *HighlightAnchor {
	for i := range s.Highlights {
		if s.Highlights[i].ID == id {
			return &s.Highlights[i]
		}
	}
	return nil
}

// HasTriple reports whether any stored anchor shares the exact
// (text, prefix, suffix) triple.
func (s *HighlightSet) HasTriple(a HighlightAnchor) bool {
	for _, existing := range s.Highlights {
		if existing.SameTriple(a) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The session cache hands out clones so rollback
// can restore the last known-good state.
func (s *HighlightSet) Clone() *HighlightSet {
	if s == nil {
		return nil
	}
	dup := &HighlightSet{Version: s.Version}
	dup.Highlights = append(dup.Highlights, s.Highlights...)
	return dup
}

// NormalizeText collapses every whitespace run to a single space and trims
// the ends. Anchor text and context snippets are stored in this form, and
// the post-render self-check compares in this form.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TailContext returns at most MaxContextLength runes from the end of s.
func TailContext(s string) string {
	runes := []rune(s)
	if len(runes) > MaxContextLength {
		runes = runes[len(runes)-MaxContextLength:]
	}
	return string(runes)
}

// HeadContext returns at most MaxContextLength runes from the start of s.
func HeadContext(s string) string {
	runes := []rune(s)
	if len(runes) > MaxContextLength {
		runes = runes[:MaxContextLength]
	}
	return string(runes)
}
