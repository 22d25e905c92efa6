package api

import "time"

// Page is a connected Facebook page as returned by /api/v1/pages endpoints.
// List responses include Stats; single-entity responses may omit it.
type Page struct {
	ID                   int        `json:"id"`
	FacebookPageID       string     `json:"facebook_page_id"`
	PageName             string     `json:"page_name"`
	PageUsername         string     `json:"page_username,omitempty"`
	PageURL              string     `json:"page_url,omitempty"`
	Category             string     `json:"category,omitempty"`
	Region               Region     `json:"region"`
	Timezone             string     `json:"timezone"`
	IsActive             bool       `json:"is_active"`
	AutoPostingEnabled   bool       `json:"auto_posting_enabled"`
	PostingFrequencyHrs  int        `json:"posting_frequency_hours"`
	FollowersCount       int        `json:"followers_count"`
	LikesCount           int        `json:"likes_count"`
	LastPostDate         *time.Time `json:"last_post_date,omitempty"`
	OptimalPostingTimes  []int      `json:"optimal_posting_times,omitempty"`
	ContentThemes        []string   `json:"content_themes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	OwnerID              int        `json:"owner_id"`
	Stats                *PageStats `json:"stats,omitempty"`
}

// PageStats is the aggregated engagement block attached to list responses.
type PageStats struct {
	TotalPosts        int     `json:"total_posts"`
	PostsThisMonth    int     `json:"posts_this_month"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	TotalReach        int     `json:"total_reach"`
	TotalImpressions  int     `json:"total_impressions"`

	// PerformanceTrend is "improving", "stable", or "declining".
	PerformanceTrend string `json:"performance_trend"`
}

// PageCreate connects a new Facebook page. AccessToken is the page token
// obtained from the Facebook OAuth flow; the server encrypts it at rest.
type PageCreate struct {
	FacebookPageID      string   `json:"facebook_page_id"`
	PageName            string   `json:"page_name"`
	PageUsername        string   `json:"page_username,omitempty"`
	PageURL             string   `json:"page_url,omitempty"`
	Category            string   `json:"category,omitempty"`
	Region              Region   `json:"region"`
	Timezone            string   `json:"timezone"`
	AccessToken         string   `json:"access_token"`
	AutoPostingEnabled  bool     `json:"auto_posting_enabled"`
	PostingFrequencyHrs int      `json:"posting_frequency_hours"`
	ContentThemes       []string `json:"content_themes,omitempty"`
}

// PageUpdate is the partial-update body for PUT /api/v1/pages/{id}.
type PageUpdate struct {
	PageName            *string  `json:"page_name,omitempty"`
	PageUsername        *string  `json:"page_username,omitempty"`
	PageURL             *string  `json:"page_url,omitempty"`
	Category            *string  `json:"category,omitempty"`
	AutoPostingEnabled  *bool    `json:"auto_posting_enabled,omitempty"`
	PostingFrequencyHrs *int     `json:"posting_frequency_hours,omitempty"`
	ContentThemes       []string `json:"content_themes,omitempty"`
	OptimalPostingTimes []int    `json:"optimal_posting_times,omitempty"`
}

// PageTokenVerification asks the server to validate a page access token
// against the Facebook Graph API before connecting the page.
type PageTokenVerification struct {
	FacebookPageID string `json:"facebook_page_id"`
	AccessToken    string `json:"access_token"`
}

// PageTokenResponse is the verification outcome.
type PageTokenResponse struct {
	IsValid      bool           `json:"is_valid"`
	PageInfo     map[string]any `json:"page_info,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}
