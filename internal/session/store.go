// Package session owns the authenticated-identity lifecycle: hydration
// from disk at startup, login/logout transitions, and the invariant
// that identity and credential are always set or cleared together.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	tokenFile = "token"
	userFile  = "user"
)

// Identity is the authenticated user held alongside the bearer token.
type Identity struct {
	ID    int    `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// Store is the single source of truth for "who is logged in", backed by
// two entries on disk so identity survives a restart. The persisted
// files are exclusively owned by this store.
type Store struct {
	dir string

	mu       sync.Mutex
	identity *Identity
	token    string
	hydrated bool
}

// NewStore creates a store persisting under dir. Call Hydrate before
// reading any state.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Hydrate reads the persisted token and identity. Missing or malformed
// state degrades silently to logged-out; corrupt local files are not
// the user's fault and never surface as an error.
func (s *Store) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() { s.hydrated = true }()

	token, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil || len(token) == 0 {
		s.clearLocked()
		return
	}
	data, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		s.clearLocked()
		return
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil || id.ID == 0 {
		s.clearLocked()
		return
	}

	s.token = string(token)
	s.identity = &id
}

// Hydrated reports whether Hydrate has completed. Anything that
// requires identity should be gated on this.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Login atomically sets identity+token in memory and persists both.
// The token's internal structure is not inspected; trust is delegated
// to the auth endpoints that produced it. Persistence failures are
// silent: in-memory state still updates.
func (s *Store) Login(token string, id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.identity = &id

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0600)
	if data, err := json.Marshal(id); err == nil {
		_ = os.WriteFile(filepath.Join(s.dir, userFile), data, 0600)
	}
}

// Logout clears identity+token in memory and on disk. Idempotent:
// logging out while already logged out is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.identity = nil
	s.token = ""
	_ = os.Remove(filepath.Join(s.dir, tokenFile))
	_ = os.Remove(filepath.Join(s.dir, userFile))
}

// Identity returns a copy of the current identity, or nil when logged
// out.
func (s *Store) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// UserID returns the current user id. ok is false when logged out.
func (s *Store) UserID() (id int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return 0, false
	}
	return s.identity.ID, true
}

// LoggedIn reports whether an identity is present.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}
