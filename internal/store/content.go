package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/socialflow/socialflow/internal/api"
)

// contentID extracts the reconciliation key for content records.
func contentID(c api.ContentItem) int { return c.ID }

// ContentFilter parameterizes content list fetches. Pure view state.
type ContentFilter struct {
	// PageID restricts the list to one page; 0 means all pages.
	PageID int

	// ApprovedOnly restricts the list to approved items.
	ApprovedOnly bool

	// ContentType restricts the list to one type; empty means all.
	ContentType api.ContentType
}

// ContentStore mirrors the generated-content collection and the scheduled
// posts derived from it.
type ContentStore struct {
	base
	gw     Caller
	logger *slog.Logger

	items     []api.ContentItem
	scheduled []api.ScheduledPost
	filter    ContentFilter
}

// NewContentStore creates a ContentStore.
func NewContentStore(gw Caller, logger *slog.Logger) *ContentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStore{gw: gw, logger: logger}
}

// Items returns a copy of the mirrored content collection.
func (s *ContentStore) Items() []api.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.items)
}

// Scheduled returns a copy of the mirrored scheduled-posts collection.
func (s *ContentStore) Scheduled() []api.ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.scheduled)
}

// Filter returns the current list filter.
func (s *ContentStore) Filter() ContentFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter records the view-side list filter. No server round-trip.
func (s *ContentStore) SetFilter(f ContentFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// narrow drops rows the filter excludes. The page scope travels on the wire;
// approval and type are list attributes the route does not filter by.
func (f ContentFilter) narrow(items []api.ContentItem) []api.ContentItem {
	if !f.ApprovedOnly && f.ContentType == "" {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		if f.ApprovedOnly && !item.IsApproved {
			continue
		}
		if f.ContentType != "" && item.ContentType != f.ContentType {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// Generate creates one content item and prepends the confirmed record.
func (s *ContentStore) Generate(ctx context.Context, req api.GenerateRequest) bool {
	s.begin()

	var item api.ContentItem
	if err := s.gw.Do(ctx, http.MethodPost, "/api/v1/content/generate", nil, req, &item); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.items = prepend(s.items, item)
	s.mu.Unlock()

	s.finish()
	return true
}

// BulkGenerate creates one item per topic. The response carries only the new
// items, not the full list ordering, so the whole collection is refetched
// afterwards to stay consistent with the server.
func (s *ContentStore) BulkGenerate(ctx context.Context, req api.BulkGenerateRequest) bool {
	s.begin()

	var created []api.ContentItem
	if err := s.gw.Do(ctx, http.MethodPost, "/api/v1/content/bulk-generate", nil, req, &created); err != nil {
		s.fail(err)
		return false
	}

	return s.Fetch(ctx, 0, 0)
}

// Fetch loads the content list under the current filter. An offset of zero
// replaces the collection wholesale; a positive offset appends the next page.
//
// The list route only scopes by page and paginates; approval and type
// narrowing is applied locally to each fetched page before it is mirrored.
func (s *ContentStore) Fetch(ctx context.Context, offset, limit int) bool {
	s.begin()

	query := url.Values{}
	s.mu.Lock()
	f := s.filter
	s.mu.Unlock()
	if f.PageID > 0 {
		query.Set("page_id", strconv.Itoa(f.PageID))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var items []api.ContentItem
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/content/", query, nil, &items); err != nil {
		s.fail(err)
		return false
	}
	items = f.narrow(items)

	s.mu.Lock()
	if offset > 0 {
		s.items = append(s.items, items...)
	} else {
		s.items = items
	}
	s.mu.Unlock()

	s.finish()
	return true
}

// Approve marks a content item approved and replaces the matching record
// with the server's confirmed version.
func (s *ContentStore) Approve(ctx context.Context, id int, feedback string) bool {
	s.begin()

	var item api.ContentItem
	path := fmt.Sprintf("/api/v1/content/%d/approve", id)
	body := api.ApprovalRequest{ContentGenerationID: id, IsApproved: true, Feedback: feedback}
	if err := s.gw.Do(ctx, http.MethodPost, path, nil, body, &item); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.items = replaceByID(s.items, contentID, item)
	s.mu.Unlock()

	s.finish()
	return true
}

// Schedule queues approved content for posting. A nil at lets the server
// pick the next optimal slot. The time travels as the schedule_time query
// parameter; the request has no body. The acknowledgement does not contain
// the scheduled-posts collection, so it is refetched for the item's page.
func (s *ContentStore) Schedule(ctx context.Context, id int, at *time.Time) bool {
	s.begin()

	var pageID int
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			pageID = s.items[i].FacebookPageID
			break
		}
	}
	s.mu.Unlock()

	var query url.Values
	if at != nil {
		query = url.Values{"schedule_time": []string{at.Format(time.RFC3339)}}
	}

	var resp api.ScheduleResponse
	path := fmt.Sprintf("/api/v1/content/%d/schedule", id)
	if err := s.gw.Do(ctx, http.MethodPost, path, query, nil, &resp); err != nil {
		s.fail(err)
		return false
	}

	if pageID > 0 {
		return s.FetchScheduled(ctx, pageID)
	}
	s.finish()
	return true
}

// FetchScheduled replaces the scheduled-posts mirror with the page's queue.
func (s *ContentStore) FetchScheduled(ctx context.Context, pageID int) bool {
	s.begin()

	var posts []api.ScheduledPost
	path := fmt.Sprintf("/api/v1/pages/%d/posts", pageID)
	if err := s.gw.Do(ctx, http.MethodGet, path, nil, nil, &posts); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.scheduled = posts
	s.mu.Unlock()

	s.finish()
	return true
}

// Optimize asks the server for improvement suggestions on a content item.
// The result is returned rather than mirrored: suggestions are advisory and
// do not alter the content collection.
func (s *ContentStore) Optimize(ctx context.Context, id int, goals []string, targetImprovement float64) (*api.OptimizationResult, bool) {
	s.begin()

	req := api.OptimizeRequest{
		ContentGenerationID: id,
		OptimizationGoals:   goals,
		TargetImprovement:   targetImprovement,
	}
	var result api.OptimizationResult
	path := fmt.Sprintf("/api/v1/content/%d/optimize", id)
	if err := s.gw.Do(ctx, http.MethodPost, path, nil, req, &result); err != nil {
		s.fail(err)
		return nil, false
	}

	s.finish()
	return &result, true
}

// Delete removes exactly the matching content record after server
// confirmation; a rejected delete leaves the collection untouched.
func (s *ContentStore) Delete(ctx context.Context, id int) bool {
	s.begin()

	path := fmt.Sprintf("/api/v1/content/%d", id)
	if err := s.gw.Do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.items = removeByID(s.items, contentID, id)
	s.mu.Unlock()

	s.finish()
	return true
}

// Reset restores all fields to their initial values.
func (s *ContentStore) Reset() {
	s.mu.Lock()
	s.items = nil
	s.scheduled = nil
	s.filter = ContentFilter{}
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
}
