package session

import "sync"

// Store keeps at most one active bet session per user. Starting a new
// session silently replaces any previous one. Sessions never expire on
// their own; they end when the walk completes or gets replaced.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*BetSession
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*BetSession)}
}

// Get returns the active session for a user, if any.
func (s *Store) Get(userID int64) (*BetSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Put installs a session for a user, replacing any existing one.
func (s *Store) Put(sess *BetSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID()] = sess
}

// Remove drops the session for a user.
func (s *Store) Remove(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// HasActive reports whether the user currently has a session in progress.
func (s *Store) HasActive(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}
