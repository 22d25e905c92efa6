package api

import "time"

// ContentType categorizes generated content.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeMixed ContentType = "mixed"
)

// PostStatus is the lifecycle state of a scheduled post.
type PostStatus string

const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPosted    PostStatus = "posted"
	PostStatusFailed    PostStatus = "failed"
	PostStatusCancelled PostStatus = "cancelled"
)

// ContentItem is one AI-generated content record as returned by the
// /api/v1/content endpoints.
type ContentItem struct {
	ID                  int         `json:"id"`
	FacebookPageID      int         `json:"facebook_page_id"`
	AIPrompt            string      `json:"ai_prompt"`
	ContentType         ContentType `json:"content_type"`
	TargetAudience      string      `json:"target_audience,omitempty"`
	GeneratedCaption    string      `json:"generated_caption,omitempty"`
	GeneratedImageURL   string      `json:"generated_image_url,omitempty"`
	GeneratedHashtags   []string    `json:"generated_hashtags,omitempty"`
	AIModelUsed         string      `json:"ai_model_used"`
	GenerationCost      float64     `json:"generation_cost,omitempty"`
	SentimentScore      float64     `json:"sentiment_score,omitempty"`
	ReadabilityScore    float64     `json:"readability_score,omitempty"`
	PredictedEngagement float64     `json:"predicted_engagement,omitempty"`
	PerformanceScore    float64     `json:"performance_score"`
	IsApproved          bool        `json:"is_approved"`
	ApprovalDate        *time.Time  `json:"approval_date,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// GenerateRequest asks the server to generate one content item.
type GenerateRequest struct {
	FacebookPageID     int         `json:"facebook_page_id"`
	AIPrompt           string      `json:"ai_prompt"`
	ContentType        ContentType `json:"content_type"`
	TargetAudience     string      `json:"target_audience,omitempty"`
	Tone               string      `json:"tone"`
	IncludeHashtags    bool        `json:"include_hashtags"`
	IncludeImage       bool        `json:"include_image"`
	CustomInstructions string      `json:"custom_instructions,omitempty"`
}

// BulkGenerateRequest generates one item per topic in a single call.
type BulkGenerateRequest struct {
	FacebookPageID  int         `json:"facebook_page_id"`
	Topics          []string    `json:"topics"`
	ContentType     ContentType `json:"content_type"`
	Tone            string      `json:"tone"`
	IncludeHashtags bool        `json:"include_hashtags"`
	IncludeImages   bool        `json:"include_images"`
}

// ApprovalRequest approves or rejects a content item. The item's id is
// repeated in the body; the server validates it against the path.
type ApprovalRequest struct {
	ContentGenerationID int    `json:"content_generation_id"`
	IsApproved          bool   `json:"is_approved"`
	Feedback            string `json:"feedback,omitempty"`
}

// ScheduleResponse acknowledges a scheduling request. The scheduled-posts
// collection itself is not included; callers refetch it separately.
type ScheduleResponse struct {
	Message         string    `json:"message"`
	ScheduledPostID int       `json:"scheduled_post_id"`
	ScheduledTime   time.Time `json:"scheduled_time"`
}

// OptimizeRequest asks for improvement suggestions on a content item.
type OptimizeRequest struct {
	ContentGenerationID int      `json:"content_generation_id"`
	OptimizationGoals   []string `json:"optimization_goals"`
	TargetImprovement   float64  `json:"target_improvement"`
}

// OptimizationResult pairs the original content with the server's
// suggestions and predicted improvements.
type OptimizationResult struct {
	OriginalContent      ContentItem        `json:"original_content"`
	Suggestions          []map[string]any   `json:"suggestions"`
	ExpectedImprovements map[string]float64 `json:"expected_improvements"`
	ConfidenceScore      float64            `json:"confidence_score"`
}

// ScheduledPost is one queued post as returned by /api/v1/pages/{id}/posts.
// The endpoint returns a trimmed projection, not the full database record.
type ScheduledPost struct {
	ID               int        `json:"id"`
	ScheduledTime    time.Time  `json:"scheduled_time"`
	ActualPostedTime *time.Time `json:"actual_posted_time,omitempty"`
	Status           PostStatus `json:"status"`
	FacebookPostID   string     `json:"facebook_post_id,omitempty"`
	PostURL          string     `json:"post_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
