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

// DateRange bounds analytics queries. Pure view state; empty values mean the
// server default window. Dates use the wire format YYYY-MM-DD.
type DateRange struct {
	Start string
	End   string
}

// days converts the range into the whole-day window the report routes take.
// Zero means "use the server default".
func (r DateRange) days() int {
	start, err := time.Parse("2006-01-02", r.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", r.End)
	if err != nil || !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

// AnalyticsStore mirrors the analytics slice of server state: the dashboard
// payload and per-post engagement records. Dashboard and summary responses
// are served from a short TTL cache keyed by the query parameters, since the
// mirrored payload is valid verbatim until the server recomputes it.
type AnalyticsStore struct {
	base
	gw     Caller
	logger *slog.Logger
	cache  *ttlCache

	dashboard *api.AnalyticsDashboard
	posts     []api.PostAnalytics
	dateRange DateRange
}

// NewAnalyticsStore creates an AnalyticsStore with the given cache TTL;
// a non-positive ttl selects the default.
func NewAnalyticsStore(gw Caller, ttl time.Duration, logger *slog.Logger) *AnalyticsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsStore{
		gw:     gw,
		logger: logger,
		cache:  newTTLCache(ttl),
	}
}

// Dashboard returns a copy of the mirrored dashboard, nil before any fetch.
func (s *AnalyticsStore) Dashboard() *api.AnalyticsDashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard == nil {
		return nil
	}
	cp := *s.dashboard
	return &cp
}

// Posts returns a copy of the mirrored per-post analytics records.
func (s *AnalyticsStore) Posts() []api.PostAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.posts)
}

// DateRange returns the current query window.
func (s *AnalyticsStore) DateRange() DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dateRange
}

// SetDateRange records the view-side query window. No server round-trip.
func (s *AnalyticsStore) SetDateRange(r DateRange) {
	s.mu.Lock()
	s.dateRange = r
	s.mu.Unlock()
}

// rangeQuery builds the start/end query parameters the summary route takes.
func (s *AnalyticsStore) rangeQuery() (url.Values, DateRange) {
	s.mu.Lock()
	r := s.dateRange
	s.mu.Unlock()

	query := url.Values{}
	if r.Start != "" {
		query.Set("start_date", r.Start)
	}
	if r.End != "" {
		query.Set("end_date", r.End)
	}
	return query, r
}

// daysQuery builds the days query parameter the report routes take, derived
// from the current date range.
func (s *AnalyticsStore) daysQuery() (url.Values, DateRange) {
	s.mu.Lock()
	r := s.dateRange
	s.mu.Unlock()

	query := url.Values{}
	if d := r.days(); d > 0 {
		query.Set("days", strconv.Itoa(d))
	}
	return query, r
}

// FetchDashboard loads the dashboard for a page under the current date
// range, serving a cached payload when one is fresh. The route takes the
// window as a day count, so the view's range is converted.
func (s *AnalyticsStore) FetchDashboard(ctx context.Context, pageID int) bool {
	query, r := s.daysQuery()
	if pageID > 0 {
		query.Set("page_id", strconv.Itoa(pageID))
	}
	key := queryKey("dashboard", pageID, r.Start, r.End)

	if cached, ok := s.cache.get(key); ok {
		dash := cached.(api.AnalyticsDashboard)
		s.mu.Lock()
		s.dashboard = &dash
		s.mu.Unlock()
		s.finish()
		return true
	}

	s.begin()

	var dash api.AnalyticsDashboard
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/analytics/dashboard", query, nil, &dash); err != nil {
		s.fail(err)
		return false
	}

	s.cache.put(key, dash)
	s.mu.Lock()
	s.dashboard = &dash
	s.mu.Unlock()

	s.finish()
	return true
}

// FetchPageSummary loads the ranged summary for one page. The summary is
// returned rather than mirrored: it is an input to comparison views, not a
// collection the store owns.
func (s *AnalyticsStore) FetchPageSummary(ctx context.Context, pageID int) (*api.PageAnalyticsSummary, bool) {
	query, r := s.rangeQuery()
	key := queryKey("summary", pageID, r.Start, r.End)

	if cached, ok := s.cache.get(key); ok {
		summary := cached.(api.PageAnalyticsSummary)
		s.finish()
		return &summary, true
	}

	s.begin()

	var summary api.PageAnalyticsSummary
	path := fmt.Sprintf("/api/v1/analytics/pages/%d/summary", pageID)
	if err := s.gw.Do(ctx, http.MethodGet, path, query, nil, &summary); err != nil {
		s.fail(err)
		return nil, false
	}

	s.cache.put(key, summary)
	s.finish()
	return &summary, true
}

// FetchPostAnalytics loads one post's engagement record and reconciles it
// into the mirror by identifier, appending when the record is new.
func (s *AnalyticsStore) FetchPostAnalytics(ctx context.Context, postID int) bool {
	s.begin()

	var record api.PostAnalytics
	path := fmt.Sprintf("/api/v1/analytics/posts/%d", postID)
	if err := s.gw.Do(ctx, http.MethodGet, path, nil, nil, &record); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	found := false
	for i := range s.posts {
		if s.posts[i].ID == record.ID {
			s.posts[i] = record
			found = true
			break
		}
	}
	if !found {
		s.posts = append(s.posts, record)
	}
	s.mu.Unlock()

	s.finish()
	return true
}

// FetchTimeline loads the hour-by-hour engagement breakdown for a page.
// Returned rather than mirrored, like the page summary; cached the same way.
func (s *AnalyticsStore) FetchTimeline(ctx context.Context, pageID int) (*api.EngagementTimeline, bool) {
	query, r := s.daysQuery()
	key := queryKey("timeline", pageID, r.Start, r.End)

	if cached, ok := s.cache.get(key); ok {
		timeline := cached.(api.EngagementTimeline)
		s.finish()
		return &timeline, true
	}

	s.begin()

	var timeline api.EngagementTimeline
	path := fmt.Sprintf("/api/v1/analytics/engagement-timeline/%d", pageID)
	if err := s.gw.Do(ctx, http.MethodGet, path, query, nil, &timeline); err != nil {
		s.fail(err)
		return nil, false
	}

	s.cache.put(key, timeline)
	s.finish()
	return &timeline, true
}

// Compare contrasts a page's current period against the preceding one.
// Returned rather than mirrored; cached like the other report views. Zero
// day counts select the server's default windows.
func (s *AnalyticsStore) Compare(ctx context.Context, pageID, daysCurrent, daysPrevious int) (*api.PerformanceComparison, bool) {
	key := queryKey("compare", pageID, strconv.Itoa(daysCurrent), strconv.Itoa(daysPrevious))

	if cached, ok := s.cache.get(key); ok {
		cmp := cached.(api.PerformanceComparison)
		s.finish()
		return &cmp, true
	}

	s.begin()

	query := url.Values{"page_id": []string{strconv.Itoa(pageID)}}
	if daysCurrent > 0 {
		query.Set("days_current", strconv.Itoa(daysCurrent))
	}
	if daysPrevious > 0 {
		query.Set("days_previous", strconv.Itoa(daysPrevious))
	}

	var cmp api.PerformanceComparison
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/analytics/compare", query, nil, &cmp); err != nil {
		s.fail(err)
		return nil, false
	}

	s.cache.put(key, cmp)
	s.finish()
	return &cmp, true
}

// CompareRegions contrasts the US and UK fleets over the current window.
func (s *AnalyticsStore) CompareRegions(ctx context.Context) (*api.RegionalComparison, bool) {
	query, r := s.daysQuery()
	key := queryKey("regions", 0, r.Start, r.End)

	if cached, ok := s.cache.get(key); ok {
		cmp := cached.(api.RegionalComparison)
		s.finish()
		return &cmp, true
	}

	s.begin()

	var cmp api.RegionalComparison
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/analytics/regional-comparison", query, nil, &cmp); err != nil {
		s.fail(err)
		return nil, false
	}

	s.cache.put(key, cmp)
	s.finish()
	return &cmp, true
}

// FetchContentAnalysis loads the content performance breakdown for a page.
func (s *AnalyticsStore) FetchContentAnalysis(ctx context.Context, pageID int) (*api.ContentPerformanceAnalysis, bool) {
	query, r := s.daysQuery()
	key := queryKey("content-analysis", pageID, r.Start, r.End)

	if cached, ok := s.cache.get(key); ok {
		analysis := cached.(api.ContentPerformanceAnalysis)
		s.finish()
		return &analysis, true
	}

	s.begin()

	var analysis api.ContentPerformanceAnalysis
	path := fmt.Sprintf("/api/v1/analytics/content-analysis/%d", pageID)
	if err := s.gw.Do(ctx, http.MethodGet, path, query, nil, &analysis); err != nil {
		s.fail(err)
		return nil, false
	}

	s.cache.put(key, analysis)
	s.finish()
	return &analysis, true
}

// Collect asks the server to pull fresh metrics from Facebook for a page,
// then refetches the dashboard past the cache so derived views see the new
// numbers. The collect acknowledgement carries no analytics payload.
func (s *AnalyticsStore) Collect(ctx context.Context, pageID int) bool {
	s.begin()

	path := fmt.Sprintf("/api/v1/analytics/collect/%d", pageID)
	if err := s.gw.Do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		s.fail(err)
		return false
	}

	s.cache.invalidate()
	return s.FetchDashboard(ctx, pageID)
}

// Reset restores all fields to their initial values and drops the cache.
func (s *AnalyticsStore) Reset() {
	s.mu.Lock()
	s.dashboard = nil
	s.posts = nil
	s.dateRange = DateRange{}
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
	s.cache.invalidate()
}
