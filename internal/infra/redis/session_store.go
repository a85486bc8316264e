package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vmm-exam-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Sessions own a live countdown, so the sessions themselves stay in a
//     local map.
//   - Redis marks which contexts run an exam on this instance
//     (vmm:session:{contextID}), refreshed on every Put.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	log      zerolog.Logger
	mu       sync.RWMutex
	sessions map[string]*app.ExamSession
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		log:      log.With().Str("component", "session_store").Logger(),
		sessions: make(map[string]*app.ExamSession),
	}
}

func (s *SessionStore) Get(contextID string) (*app.ExamSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[contextID]
	return session, ok
}

func (s *SessionStore) Put(session *app.ExamSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	if err := s.client.Set(context.Background(), s.key(session.ID()), session.State().String(), s.ttl).Err(); err != nil {
		s.log.Debug().Err(err).Str("context_id", session.ID()).Msg("set session marker")
	}
}

func (s *SessionStore) Delete(contextID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, contextID)
	if err := s.client.Del(context.Background(), s.key(contextID)).Err(); err != nil {
		s.log.Debug().Err(err).Str("context_id", contextID).Msg("clear session marker")
	}
}

func (s *SessionStore) key(contextID string) string {
	return keyPrefix + "session:" + contextID
}
