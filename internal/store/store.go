// Package store holds the client-side mirrors of server-owned collections.
//
// Each store owns one slice of server state (auth session, pages, content,
// analytics), a loading flag, and a last-error message. Local collections are
// caches, not sources of truth: every mutation goes to the server first and
// local state is reconciled only from the server's response payload. A failed
// action leaves the collection untouched.
//
// Overlapping actions on one store intentionally race on the loading/error
// scalars (last writer wins); this mirrors the observed platform behavior and
// is documented on base. Collections themselves are only ever written from
// confirmed responses under the store mutex, so the race never corrupts
// mirrored data.
package store

import (
	"context"
	"net/url"
	"sync"
)

// Caller dispatches one API request. Implemented by *gateway.Gateway;
// tests substitute fakes.
type Caller interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// base carries the per-store action scalars shared by every domain store.
//
// begin and finish write loading/lastErr unconditionally: when two actions
// overlap, the second action's completion overwrites whatever the first set
// (last-writer-wins). Callers needing per-invocation outcomes use the action
// methods' return values, which are race-free.
type base struct {
	mu      sync.Mutex
	loading bool
	lastErr string
}

// begin marks an action as started: loading set, error cleared.
func (b *base) begin() {
	b.mu.Lock()
	b.loading = true
	b.lastErr = ""
	b.mu.Unlock()
}

// fail records a failed action. The collection is never touched on failure.
func (b *base) fail(err error) {
	b.mu.Lock()
	b.loading = false
	if err != nil {
		b.lastErr = err.Error()
	}
	b.mu.Unlock()
}

// finish records a successful action.
func (b *base) finish() {
	b.mu.Lock()
	b.loading = false
	b.lastErr = ""
	b.mu.Unlock()
}

// Loading reports whether an action is in flight.
func (b *base) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Err returns the last action's error message, "" when the last action
// succeeded. Last-error-wins: messages are replaced, never accumulated.
func (b *base) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// reset restores the scalar fields to their zero values.
func (b *base) reset() {
	b.mu.Lock()
	b.loading = false
	b.lastErr = ""
	b.mu.Unlock()
}
