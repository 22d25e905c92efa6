package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/socialflow/socialflow/internal/api"
	"github.com/socialflow/socialflow/internal/token"
)

// FileStore manages reading and writing the client state file.
// It provides atomic writes (write-tmp-then-rename), automatic backups, and
// file locking (flock for cross-process, mutex for in-process). The file
// holds bearer credentials, so 0600 permissions are enforced on write and
// checked on load.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a FileStore for the given file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads and parses the state file.
// A missing file yields DefaultState(); invalid JSON is an error.
// Warns if the existing file has permissions more open than 0600.
func (s *FileStore) Load() (*ClientState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("state file not found, using default state", "path", s.path)
			return s.DefaultState(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	// Skip the permission check on Windows where Unix permission bits are
	// not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 { // group or other has access
				s.logger.Warn("state file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var state ClientState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	return &state, nil
}

// Save writes the ClientState to disk atomically.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire flock on path+".lock"
//  3. Copy current file to path+".bak" (ignored if no current file)
//  4. Marshal state as indented JSON
//  5. Write to path+".tmp" with 0600 permissions
//  6. Fsync the temp file
//  7. Rename path+".tmp" -> path
//  8. Release flock
//  9. Release mutex
func (s *FileStore) Save(state *ClientState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(state)
}

// saveLocked performs the Save sequence. Caller must hold s.mu.
func (s *FileStore) saveLocked(state *ClientState) error {
	state.UpdatedAt = time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}
	if state.Version == "" {
		state.Version = "1"
	}

	// Acquire cross-process file lock.
	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	// Create backup of current file (ignore error if file doesn't exist).
	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		bakPath := s.path + ".bak"
		if writeErr := os.WriteFile(bakPath, currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Explicitly ensure 0600 permissions after rename as a safety net.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on state file", "error", err)
	}

	s.logger.Debug("state saved", "path", s.path)
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it over the
// target path. On any error the temp file is cleaned up.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to state: %w", err)
	}
	return nil
}

// DefaultState returns an empty ClientState: no tokens, no session.
func (s *FileStore) DefaultState() *ClientState {
	now := time.Now().UTC()
	return &ClientState{
		Version:   "1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Exists returns true if the state file exists on disk.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// mutate loads the current state, applies fn, and saves the result under the
// in-process mutex so read-modify-write cycles don't lose updates.
func (s *FileStore) mutate(fn func(*ClientState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load without the permission warning path; Load is lock-free reads only.
	state, err := s.loadLocked()
	if err != nil {
		return err
	}
	fn(state)
	return s.saveLocked(state)
}

// loadLocked reads the state file without taking s.mu. Caller must hold it.
func (s *FileStore) loadLocked() (*ClientState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.DefaultState(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var state ClientState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return &state, nil
}

// SaveTokens persists the token pair, replacing any previous one.
func (s *FileStore) SaveTokens(p *token.Pair) error {
	cp := *p
	return s.mutate(func(st *ClientState) {
		st.Tokens = &cp
	})
}

// ClearTokens removes the persisted token pair.
func (s *FileStore) ClearTokens() error {
	return s.mutate(func(st *ClientState) {
		st.Tokens = nil
	})
}

// LoadTokens returns the persisted token pair, or nil if none exists.
func (s *FileStore) LoadTokens() (*token.Pair, error) {
	state, err := s.Load()
	if err != nil {
		return nil, err
	}
	if state.Tokens == nil {
		return nil, nil
	}
	cp := *state.Tokens
	return &cp, nil
}

// SaveSession persists the {user, isAuthenticated} snapshot.
func (s *FileStore) SaveSession(user *api.User, authenticated bool) error {
	var cp *api.User
	if user != nil {
		u := *user
		cp = &u
	}
	return s.mutate(func(st *ClientState) {
		st.Session = &SessionEntry{
			User:            cp,
			IsAuthenticated: authenticated,
			UpdatedAt:       time.Now().UTC(),
		}
	})
}

// ClearSession removes the persisted session snapshot.
func (s *FileStore) ClearSession() error {
	return s.mutate(func(st *ClientState) {
		st.Session = nil
	})
}

// LoadSession returns the persisted session snapshot.
// Returns (nil, false, nil) when no snapshot exists.
func (s *FileStore) LoadSession() (*api.User, bool, error) {
	state, err := s.Load()
	if err != nil {
		return nil, false, err
	}
	if state.Session == nil {
		return nil, false, nil
	}
	var cp *api.User
	if state.Session.User != nil {
		u := *state.Session.User
		cp = &u
	}
	return cp, state.Session.IsAuthenticated, nil
}

// Compile-time interface verification.
var _ token.Persistence = (*FileStore)(nil)
