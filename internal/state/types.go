// Package state provides file-based persistence for the SocialFlow client.
//
// A single state file holds everything that survives a restart: the token
// pair owned by the token manager and the auth store's session snapshot.
// Writes are atomic with backup and file locking.
package state

import (
	"time"

	"github.com/socialflow/socialflow/internal/api"
	"github.com/socialflow/socialflow/internal/token"
)

// ClientState is the top-level structure persisted in the state file.
type ClientState struct {
	// Version is the schema version for forward compatibility. Currently "1".
	Version string `json:"version"`

	// Tokens is the persisted token pair. Nil when logged out.
	Tokens *token.Pair `json:"tokens,omitempty"`

	// Session is the persisted session snapshot used to restore the auth
	// store across restarts. Nil when no session has been established.
	Session *SessionEntry `json:"session,omitempty"`

	// CreatedAt is when this state file was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this state file was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionEntry is the {user, isAuthenticated} snapshot the auth store
// persists on every session mutation.
type SessionEntry struct {
	// User is the last server-confirmed profile.
	User *api.User `json:"user,omitempty"`

	// IsAuthenticated mirrors the auth store's derived session validity.
	IsAuthenticated bool `json:"is_authenticated"`

	// UpdatedAt is when this snapshot was last written.
	UpdatedAt time.Time `json:"updated_at"`
}
