package registration

import (
	"time"
)

type formSession struct {
	id        string
	state     FormState
	expiresAt time.Time
}

// sessionStore keeps open forms in memory. It is not safe for concurrent use;
// the service serializes access.
type sessionStore struct {
	ttl      time.Duration
	sessions map[string]*formSession
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{ttl: ttl, sessions: make(map[string]*formSession)}
}

func (s *sessionStore) create(id string, now time.Time) *formSession {
	s.prune(now)

	session := &formSession{id: id, state: NewFormState(), expiresAt: now.Add(s.ttl)}
	s.sessions[id] = session
	return session
}

// get returns a live session and extends its lifetime. Expired sessions are removed.
func (s *sessionStore) get(id string, now time.Time) (*formSession, bool) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	if !now.Before(session.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}

	session.expiresAt = now.Add(s.ttl)
	return session, true
}

func (s *sessionStore) delete(id string) bool {
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *sessionStore) prune(now time.Time) int {
	removed := 0
	for id, session := range s.sessions {
		if !now.Before(session.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) len() int {
	return len(s.sessions)
}
