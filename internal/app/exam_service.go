package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"vmm-exam-service/internal/domain"
)

// SessionRepository abstracts how exam sessions are held (in-memory, Redis, etc).
// At most one session is kept per browsing context.
type SessionRepository interface {
	Get(contextID string) (*ExamSession, bool)
	Put(session *ExamSession)
	Delete(contextID string)
}

// QuestionRepository loads question banks (from cache/backing store).
type QuestionRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// ExamService contains the exam use cases.
type ExamService struct {
	sessions    SessionRepository
	banks       QuestionRepository
	bankID      string
	deps        SessionDeps
	leaderboard *LeaderboardManager
	log         zerolog.Logger

	// serializes the check-then-put of Begin
	mu sync.Mutex
}

func NewExamService(sessions SessionRepository, banks QuestionRepository, bankID string, deps SessionDeps, leaderboard *LeaderboardManager) *ExamService {
	return &ExamService{
		sessions:    sessions,
		banks:       banks,
		bankID:      bankID,
		deps:        deps,
		leaderboard: leaderboard,
		log:         deps.Log.With().Str("component", "exam_service").Logger(),
	}
}

// Questions returns the exam bank without its answer key.
func (s *ExamService) Questions(ctx context.Context) (domain.QuestionBank, error) {
	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return bank.Public(), nil
}

// Begin registers the candidate and starts a countdown for the context.
// A context already running a session gets domain.ErrSessionInProgress.
func (s *ExamService) Begin(ctx context.Context, contextID string, candidate domain.Candidate, hooks SessionHooks) (*ExamSession, error) {
	// Users cannot start an exam whose bank cannot be loaded.
	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions.Get(contextID); ok && existing.State() == StateInProgress {
		return nil, domain.ErrSessionInProgress
	}

	session := NewExamSession(contextID, bank, s.deps, s.withTopperPublishing(hooks))
	if err := session.Start(candidate); err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return session, nil
}

// Answer records an answer in the context's session.
func (s *ExamService) Answer(_ context.Context, contextID string, questionID int, optionID string) error {
	session, ok := s.sessions.Get(contextID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.RecordAnswer(questionID, optionID)
}

// Submit manually submits the context's session.
func (s *ExamService) Submit(ctx context.Context, contextID string, confirmed bool) (domain.Result, error) {
	session, ok := s.sessions.Get(contextID)
	if !ok {
		return domain.Result{}, domain.ErrSessionNotFound
	}
	return session.Submit(ctx, SubmitManual, confirmed)
}

func (s *ExamService) Session(_ context.Context, contextID string) (SessionSnapshot, error) {
	session, ok := s.sessions.Get(contextID)
	if !ok {
		return SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Abandon stops the context's countdown and drops the session.
func (s *ExamService) Abandon(_ context.Context, contextID string) {
	session, ok := s.sessions.Get(contextID)
	if !ok {
		return
	}
	session.Abandon()
	if session.State() == StateInProgress {
		s.log.Info().Str("context_id", contextID).Msg("exam session abandoned")
	}
	s.sessions.Delete(contextID)
}

func (s *ExamService) withTopperPublishing(hooks SessionHooks) SessionHooks {
	next := hooks.OnSubmit
	hooks.OnSubmit = func(result domain.Result, reason SubmitReason) {
		if result.IsTopper && s.leaderboard != nil {
			if _, err := s.leaderboard.Upsert(context.Background(), TopperEntry(result)); err != nil {
				s.log.Error().Err(err).Str("identifier", result.Identifier).Msg("publish topper failed")
			}
		}
		if next != nil {
			next(result, reason)
		}
	}
	return hooks
}
