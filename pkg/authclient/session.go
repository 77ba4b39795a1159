package authclient

import (
	"encoding/json"
	"sync"
	"time"
)

// Account types returned in the user record.
const (
	AccountStudent = "student"
	AccountTeacher = "teacher"
	AccountAdmin   = "admin"
)

// User is the authenticated user record returned by the API. The profile
// variant stays raw; callers that need it decode by AccountType.
type User struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	AccountType string          `json:"user_type"`
	Profile     json.RawMessage `json:"profile"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SessionState is the three-state session machine. A store starts
// Unresolved and, once resolved either way, never returns there for the
// lifetime of the process.
type SessionState int

const (
	SessionUnresolved SessionState = iota
	SessionAuthenticated
	SessionUnauthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unresolved"
	}
}

// SessionStore holds the current session state and user. Direct
// transitions (login, logout) bump a sequence number; an async
// resolution started earlier applies only if the sequence is unchanged,
// so a slow bootstrap /me/ call can never clobber a fresh login.
type SessionStore struct {
	mu    sync.Mutex
	state SessionState
	user  *User
	seq   uint64
}

// NewSessionStore returns a store in the Unresolved state.
func NewSessionStore() *SessionStore {
	return &SessionStore{state: SessionUnresolved}
}

// State returns the current state.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the state together with the current user.
func (s *SessionStore) Snapshot() (SessionState, *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.user
}

// Begin marks the start of an async resolution and returns the sequence
// to present on completion.
func (s *SessionStore) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// ResolveAuthenticated completes an async resolution with a user.
// Returns false when a direct transition superseded it.
func (s *SessionStore) ResolveAuthenticated(seq uint64, user *User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.apply(SessionAuthenticated, user)
	return true
}

// ResolveUnauthenticated completes an async resolution without a session.
func (s *SessionStore) ResolveUnauthenticated(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.apply(SessionUnauthenticated, nil)
	return true
}

// SetAuthenticated applies a direct transition after login or
// registration.
func (s *SessionStore) SetAuthenticated(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(SessionAuthenticated, user)
}

// SetUnauthenticated applies a direct transition after logout or a
// failed refresh.
func (s *SessionStore) SetUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(SessionUnauthenticated, nil)
}

func (s *SessionStore) apply(state SessionState, user *User) {
	s.state = state
	s.user = user
	s.seq++
}
