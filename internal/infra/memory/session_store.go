package memory

import (
	"sync"

	"vmm-exam-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.ExamSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.ExamSession),
	}
}

func (s *SessionStore) Get(contextID string) (*app.ExamSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[contextID]
	return session, ok
}

// Put replaces whatever session the context held before.
func (s *SessionStore) Put(session *app.ExamSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Delete(contextID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, contextID)
}

// Len reports how many contexts hold a session.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
