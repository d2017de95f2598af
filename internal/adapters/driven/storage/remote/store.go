// Package remote implements the HighlightStore port against the HTTP
// key-value endpoint: GET by document key returns the stored set, PUT
// replaces it whole. Saves carry no version check; two sessions editing
// the same document race last-write-wins.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HighlightStore = (*Store)(nil)

// defaultTimeout bounds one persistence round trip. There is no retry and
// no cancellation path distinct from failure: a hung save is a failed save
// and triggers the caller's rollback.
const defaultTimeout = 10 * time.Second

// Store is the HTTP highlight store client.
type Store struct {
	base   string
	client *http.Client
}

// New creates a client for the given endpoint base URL.
func New(base string) *Store {
	return &Store{
		base:   base,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithClient creates a client with a custom *http.Client (tests).
func NewWithClient(base string, client *http.Client) *Store {
	return &Store{base: base, client: client}
}

// Load fetches the set stored under key. 404 means nothing stored.
func (s *Store) Load(ctx context.Context, key string) (*domain.HighlightSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.keyURL(key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("highlight endpoint: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("highlight endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading highlight set: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var set domain.HighlightSet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("decoding highlight set: %w", err)
	}
	return &set, nil
}

// Save stores the whole set under key, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, set *domain.HighlightSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding highlight set: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.keyURL(key), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("highlight endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("highlight endpoint returned %s", resp.Status)
	}
	return nil
}

func (s *Store) keyURL(key string) string {
	return s.base + "/" + url.PathEscape(key)
}
