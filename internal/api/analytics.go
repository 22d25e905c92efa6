package api

import "time"

// PostAnalytics is the engagement record for one published post.
type PostAnalytics struct {
	ID                  int       `json:"id"`
	FacebookPageID      int       `json:"facebook_page_id"`
	ScheduledPostID     int       `json:"scheduled_post_id,omitempty"`
	Impressions         int       `json:"impressions"`
	Reach               int       `json:"reach"`
	EngagedUsers        int       `json:"engaged_users"`
	Clicks              int       `json:"clicks"`
	Likes               int       `json:"likes"`
	Comments            int       `json:"comments"`
	Shares              int       `json:"shares"`
	EngagementRate      float64   `json:"engagement_rate"`
	ClickThroughRate    float64   `json:"click_through_rate"`
	PerformanceScore    float64   `json:"performance_score"`
	RelativePerformance string    `json:"relative_performance,omitempty"`
	LastUpdated         time.Time `json:"last_updated"`
	CreatedAt           time.Time `json:"created_at"`
}

// PageAnalyticsSummary aggregates a page's performance over a date range.
type PageAnalyticsSummary struct {
	FacebookPageID       int                `json:"facebook_page_id"`
	DateRange            map[string]string  `json:"date_range"`
	TotalPosts           int                `json:"total_posts"`
	TotalImpressions     int                `json:"total_impressions"`
	TotalReach           int                `json:"total_reach"`
	TotalEngagedUsers    int                `json:"total_engaged_users"`
	TotalClicks          int                `json:"total_clicks"`
	AvgEngagementRate    float64            `json:"avg_engagement_rate"`
	AvgClickThroughRate  float64            `json:"avg_click_through_rate"`
	BestPerformingPost   map[string]any     `json:"best_performing_post,omitempty"`
	WorstPerformingPost  map[string]any     `json:"worst_performing_post,omitempty"`
	PostingFrequency     float64            `json:"posting_frequency"`
	GrowthMetrics        map[string]float64 `json:"growth_metrics"`
}

// OptimizationInsight is one server-computed recommendation.
type OptimizationInsight struct {
	ID                  int            `json:"id"`
	FacebookPageID      int            `json:"facebook_page_id"`
	InsightType         string         `json:"insight_type"`
	InsightData         map[string]any `json:"insight_data"`
	ConfidenceScore     float64        `json:"confidence_score"`
	Recommendation      string         `json:"recommendation"`
	ExpectedImprovement float64        `json:"expected_improvement,omitempty"`
	IsImplemented       bool           `json:"is_implemented"`
	CreatedAt           time.Time      `json:"created_at"`
	ExpiresAt           *time.Time     `json:"expires_at,omitempty"`
}

// AnalyticsDashboard is the composite payload for the dashboard view.
type AnalyticsDashboard struct {
	Summary               PageAnalyticsSummary  `json:"summary"`
	RecentPosts           []PostAnalytics       `json:"recent_posts"`
	OptimizationInsights  []OptimizationInsight `json:"optimization_insights"`
	PerformanceTrends     map[string][]float64  `json:"performance_trends"`
	UpcomingOptimizations []map[string]any      `json:"upcoming_optimizations"`
}

// PerformanceComparison contrasts two consecutive reporting periods for
// one page.
type PerformanceComparison struct {
	CurrentPeriod   PageAnalyticsSummary `json:"current_period"`
	PreviousPeriod  PageAnalyticsSummary `json:"previous_period"`
	Improvements    map[string]float64   `json:"improvements"`
	Declines        map[string]float64   `json:"declines"`
	Recommendations []string             `json:"recommendations"`
}

// RegionalComparison contrasts the US and UK page fleets. Either side is nil
// when the account has no active pages in that region.
type RegionalComparison struct {
	USPerformance                *PageAnalyticsSummary `json:"us_performance,omitempty"`
	UKPerformance                *PageAnalyticsSummary `json:"uk_performance,omitempty"`
	RegionalInsights             []string              `json:"regional_insights"`
	CrossRegionalRecommendations []string              `json:"cross_regional_recommendations"`
}

// ContentPerformanceAnalysis breaks down which content attributes drive a
// page's engagement.
type ContentPerformanceAnalysis struct {
	ContentTypePerformance map[string]float64 `json:"content_type_performance"`
	OptimalCaptionLength   int                `json:"optimal_caption_length"`
	BestHashtagCount       int                `json:"best_hashtag_count"`
	SentimentImpact        map[string]float64 `json:"sentiment_impact"`
	ImageVsTextPerformance map[string]float64 `json:"image_vs_text_performance"`
	RegionalPreferences    map[string]any     `json:"regional_preferences"`
}

// EngagementTimeline is the hour-by-hour engagement breakdown for a page.
type EngagementTimeline struct {
	FacebookPageID   int              `json:"facebook_page_id"`
	TimelineData     []map[string]any `json:"timeline_data"`
	PeakHours        []int            `json:"peak_hours"`
	BestDays         []string         `json:"best_days"`
	SeasonalPatterns map[string]any   `json:"seasonal_patterns"`
}
