package api

import "time"

// Region identifies the regional profile a user or page operates under.
type Region string

const (
	// RegionUS selects the US posting profile (America/New_York).
	RegionUS Region = "US"

	// RegionUK selects the UK posting profile (Europe/London).
	RegionUK Region = "UK"
)

// User is the platform account as returned by /api/v1/auth/me and embedded
// in token responses.
type User struct {
	ID                 int        `json:"id"`
	Email              string     `json:"email"`
	Username           string     `json:"username"`
	FullName           string     `json:"full_name,omitempty"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	Plan               string     `json:"plan"`
	MonthlyPostLimit   int        `json:"monthly_post_limit"`
	PostsUsedThisMonth int        `json:"posts_used_this_month"`
	AICreditsRemaining int        `json:"ai_credits_remaining"`
	PreferredRegion    Region     `json:"preferred_region,omitempty"`
	Timezone           string     `json:"timezone,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// TokenResponse is returned by login, register, and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}

// LoginRequest is the credential exchange body for /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account via /api/v1/auth/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	FullName        string `json:"full_name,omitempty"`
	Password        string `json:"password"`
	PreferredRegion Region `json:"preferred_region,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserUpdate is the partial-update body for PUT /api/v1/auth/me.
// Nil fields are omitted and left unchanged server-side.
type UserUpdate struct {
	FullName        *string `json:"full_name,omitempty"`
	PreferredRegion *Region `json:"preferred_region,omitempty"`
	Timezone        *string `json:"timezone,omitempty"`
}

// PasswordResetRequest starts the reset flow for an email address.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes the reset flow with the emailed token.
type PasswordResetConfirm struct {
	Email       string `json:"email"`
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// UserStats is the usage snapshot returned by /api/v1/auth/stats.
type UserStats struct {
	UserID             int        `json:"user_id"`
	Plan               string     `json:"plan"`
	PostsUsedThisMonth int        `json:"posts_used_this_month"`
	MonthlyPostLimit   int        `json:"monthly_post_limit"`
	AICreditsRemaining int        `json:"ai_credits_remaining"`
	UsagePercentage    float64    `json:"usage_percentage"`
	AccountAgeDays     int        `json:"account_age_days"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// MessageResponse is the generic acknowledgement body used by endpoints that
// return no entity (logout, password reset, delete).
type MessageResponse struct {
	Message string `json:"message"`
}
