package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/socialflow/socialflow/internal/api"
)

// pageID extracts the reconciliation key for page records.
func pageID(p api.Page) int { return p.ID }

// PagesStore mirrors the connected Facebook pages collection.
// SelectedPageID is pure view state used to parameterize later fetches; it
// never round-trips to the server.
type PagesStore struct {
	base
	gw     Caller
	logger *slog.Logger

	pages      []api.Page
	selectedID int
}

// NewPagesStore creates a PagesStore.
func NewPagesStore(gw Caller, logger *slog.Logger) *PagesStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PagesStore{gw: gw, logger: logger}
}

// Pages returns a copy of the mirrored collection.
func (s *PagesStore) Pages() []api.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.pages)
}

// SelectedPageID returns the view-side page selection, 0 when none.
func (s *PagesStore) SelectedPageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// SelectPage records the view-side page selection. No server round-trip.
func (s *PagesStore) SelectPage(id int) {
	s.mu.Lock()
	s.selectedID = id
	s.mu.Unlock()
}

// Fetch replaces the collection with the server's page list (with stats).
func (s *PagesStore) Fetch(ctx context.Context) bool {
	s.begin()

	var pages []api.Page
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/pages/", nil, nil, &pages); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()

	s.finish()
	return true
}

// Get fetches one page and reconciles it into the collection by identifier.
func (s *PagesStore) Get(ctx context.Context, id int) bool {
	s.begin()

	var page api.Page
	path := fmt.Sprintf("/api/v1/pages/%d", id)
	if err := s.gw.Do(ctx, http.MethodGet, path, nil, nil, &page); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.pages = replaceByID(s.pages, pageID, page)
	s.mu.Unlock()

	s.finish()
	return true
}

// Connect registers a new Facebook page and prepends the confirmed record.
func (s *PagesStore) Connect(ctx context.Context, req api.PageCreate) bool {
	s.begin()

	var page api.Page
	if err := s.gw.Do(ctx, http.MethodPost, "/api/v1/pages/", nil, req, &page); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.pages = prepend(s.pages, page)
	s.mu.Unlock()

	s.finish()
	return true
}

// Update applies a partial update and replaces the matching record with the
// server's confirmed version.
func (s *PagesStore) Update(ctx context.Context, id int, req api.PageUpdate) bool {
	s.begin()

	var page api.Page
	path := fmt.Sprintf("/api/v1/pages/%d", id)
	if err := s.gw.Do(ctx, http.MethodPut, path, nil, req, &page); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.pages = replaceByID(s.pages, pageID, page)
	s.mu.Unlock()

	s.finish()
	return true
}

// Delete disconnects a page and removes exactly the matching record.
// The collection is untouched when the server rejects the delete.
func (s *PagesStore) Delete(ctx context.Context, id int) bool {
	s.begin()

	path := fmt.Sprintf("/api/v1/pages/%d", id)
	if err := s.gw.Do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.pages = removeByID(s.pages, pageID, id)
	if s.selectedID == id {
		s.selectedID = 0
	}
	s.mu.Unlock()

	s.finish()
	return true
}

// VerifyToken asks the server to validate a page access token against the
// Facebook Graph API. No local state is mirrored; the result is returned.
func (s *PagesStore) VerifyToken(ctx context.Context, req api.PageTokenVerification) (*api.PageTokenResponse, bool) {
	s.begin()

	var resp api.PageTokenResponse
	if err := s.gw.Do(ctx, http.MethodPost, "/api/v1/pages/verify-token", nil, req, &resp); err != nil {
		s.fail(err)
		return nil, false
	}

	s.finish()
	return &resp, true
}

// Sync asks the server to pull fresh page data from Facebook, then refetches
// the page so the mirror reflects the synced counters. The sync response
// itself carries no page payload, hence the secondary fetch.
func (s *PagesStore) Sync(ctx context.Context, id int) bool {
	s.begin()

	path := fmt.Sprintf("/api/v1/pages/%d/sync", id)
	if err := s.gw.Do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		s.fail(err)
		return false
	}

	return s.Get(ctx, id)
}

// Reset restores all fields to their initial values.
func (s *PagesStore) Reset() {
	s.mu.Lock()
	s.pages = nil
	s.selectedID = 0
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
}
