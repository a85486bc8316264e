package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vmm-exam-service/internal/domain"
)

// SessionState is the lifecycle position of an exam session.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateSubmitted
)

func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SubmitReason tells a candidate-driven submission apart from the clock running out.
type SubmitReason int

const (
	SubmitManual SubmitReason = iota
	SubmitTimedOut
)

func (r SubmitReason) String() string {
	if r == SubmitTimedOut {
		return "timed_out"
	}
	return "manual"
}

// DefaultExamDuration is the countdown of one session.
const DefaultExamDuration = 600 * time.Second

const tickInterval = time.Second

// Evaluator scores a frozen attempt. *ScoringPolicy implements it.
type Evaluator interface {
	Evaluate(a Attempt) (Outcome, error)
}

// CandidateValidator checks and normalizes registration input.
type CandidateValidator interface {
	ValidateCandidate(c domain.Candidate) (domain.Candidate, error)
}

// SessionHooks are invoked outside the session lock.
type SessionHooks struct {
	OnTick   func(remaining int)
	OnSubmit func(result domain.Result, reason SubmitReason)
}

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Policy           Evaluator
	Results          *ResultStore
	Validator        CandidateValidator
	Scheduler        Scheduler
	Rand             Rand
	Now              func() time.Time
	Duration         time.Duration
	IdentifierPrefix string
	Log              zerolog.Logger
}

// ExamSession is the timed state machine of one candidate attempt.
// All methods are safe for concurrent use; state guards make repeated
// or late calls harmless.
type ExamSession struct {
	id    string
	bank  domain.QuestionBank
	deps  SessionDeps
	hooks SessionHooks
	log   zerolog.Logger

	mu        sync.Mutex
	state     SessionState
	candidate domain.Candidate
	answers   domain.AnswerSet
	remaining int
	startedAt time.Time
	result    *domain.Result
	stopClock func()
}

// SessionSnapshot is a point-in-time copy of a session.
type SessionSnapshot struct {
	ContextID string           `json:"contextId"`
	State     string           `json:"state"`
	Candidate domain.Candidate `json:"candidate"`
	Answers   domain.AnswerSet `json:"answers"`
	Remaining int              `json:"remaining"`
	StartedAt time.Time        `json:"startedAt"`
	Result    *domain.Result   `json:"result,omitempty"`
}

// NewExamSession creates a NotStarted session for a browsing context.
func NewExamSession(contextID string, bank domain.QuestionBank, deps SessionDeps, hooks SessionHooks) *ExamSession {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Duration <= 0 {
		deps.Duration = DefaultExamDuration
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TickerScheduler{}
	}
	if deps.Rand == nil {
		deps.Rand = NewRand(0)
	}
	return &ExamSession{
		id:    contextID,
		bank:  bank,
		deps:  deps,
		hooks: hooks,
		log:   deps.Log.With().Str("component", "exam_session").Str("context_id", contextID).Logger(),
	}
}

func (s *ExamSession) ID() string {
	return s.id
}

func (s *ExamSession) Bank() domain.QuestionBank {
	return s.bank
}

// Start validates the candidate and starts the countdown. A validation failure
// leaves the session NotStarted.
func (s *ExamSession) Start(candidate domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		return &domain.StateError{Op: "start", State: s.state.String()}
	}
	normalized, err := s.deps.Validator.ValidateCandidate(candidate)
	if err != nil {
		return err
	}

	s.candidate = normalized
	s.answers = make(domain.AnswerSet, s.bank.Len())
	s.remaining = int(s.deps.Duration / tickInterval)
	s.startedAt = s.deps.Now()
	s.state = StateInProgress
	// the scheduled callback takes the lock, so it cannot observe a half-started session
	s.stopClock = s.deps.Scheduler.Schedule(tickInterval, s.scheduledTick)

	s.log.Info().Str("candidate", normalized.Name).Int("remaining", s.remaining).Msg("exam session started")
	return nil
}

func (s *ExamSession) scheduledTick() {
	if err := s.Tick(context.Background()); err != nil && !errors.Is(err, domain.ErrInvalidState) {
		s.log.Error().Err(err).Msg("timed out submission failed")
	}
}

// Tick consumes one second. Reaching zero submits unconditionally.
func (s *ExamSession) Tick(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		state := s.state
		s.mu.Unlock()
		return &domain.StateError{Op: "tick", State: state.String()}
	}

	s.remaining--
	remaining := s.remaining
	if remaining > 0 {
		s.mu.Unlock()
		s.notifyTick(remaining)
		return nil
	}

	result, scored, err := s.submitLocked(ctx, SubmitTimedOut)
	s.mu.Unlock()

	s.notifyTick(0)
	if scored {
		s.notifySubmit(result, SubmitTimedOut)
	}
	return err
}

// RecordAnswer upserts the chosen option for a question. Last write wins.
func (s *ExamSession) RecordAnswer(questionID int, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return &domain.StateError{Op: "answer", State: s.state.String()}
	}
	q, ok := s.bank.Lookup(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrQuestionNotFound, questionID)
	}
	if !q.HasOption(optionID) {
		return fmt.Errorf("%w: %q for question %d", domain.ErrOptionNotFound, optionID, questionID)
	}
	s.answers[questionID] = optionID
	return nil
}

// Submit finalizes the attempt. A manual submission with unanswered questions
// returns *domain.IncompleteSubmissionError unless confirmed, and the session
// stays InProgress. A second submission returns domain.ErrAlreadySubmitted.
func (s *ExamSession) Submit(ctx context.Context, reason SubmitReason, confirmed bool) (domain.Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitted:
		s.mu.Unlock()
		return domain.Result{}, domain.ErrAlreadySubmitted
	case StateNotStarted:
		s.mu.Unlock()
		return domain.Result{}, &domain.StateError{Op: "submit", State: s.state.String()}
	}

	if reason == SubmitManual && !confirmed {
		if missing := s.answers.Unanswered(s.bank); len(missing) > 0 {
			s.mu.Unlock()
			return domain.Result{}, &domain.IncompleteSubmissionError{Unanswered: missing}
		}
	}

	result, scored, err := s.submitLocked(ctx, reason)
	s.mu.Unlock()
	if scored {
		s.notifySubmit(result, reason)
	}
	return result, err
}

// submitLocked freezes the answers, stops the clock and scores exactly once.
// The state moves to Submitted before anything can fail. scored reports whether
// a result exists; a failed save still returns it together with the error.
func (s *ExamSession) submitLocked(ctx context.Context, reason SubmitReason) (result domain.Result, scored bool, err error) {
	s.state = StateSubmitted
	if s.stopClock != nil {
		s.stopClock()
	}

	frozen := s.answers.Clone()
	total := int(s.deps.Duration / tickInterval)
	outcome, err := s.deps.Policy.Evaluate(Attempt{
		Answers:   frozen,
		Questions: s.bank.Len(),
		Correct:   frozen.Correct(s.bank),
		Elapsed:   time.Duration(total-s.remaining) * tickInterval,
		Remaining: time.Duration(s.remaining) * tickInterval,
		Reason:    reason,
	})
	if err != nil {
		return domain.Result{}, false, fmt.Errorf("score session %s: %w", s.id, err)
	}

	result = domain.Result{
		Name:       s.candidate.Name,
		Identifier: NewIdentifier(s.deps.IdentifierPrefix, s.candidate.City, s.deps.Rand),
		Score:      outcome.Score,
		Branch:     s.candidate.Branch,
		Timestamp:  s.deps.Now().UTC(),
		Status:     outcome.Status,
		IsTopper:   outcome.IsTopper,
		Answers:    frozen,
	}
	s.candidate.Identifier = result.Identifier
	s.result = &result

	s.log.Info().
		Str("reason", reason.String()).
		Str("identifier", result.Identifier).
		Int("answered", len(frozen)).
		Int("score", result.Score).
		Str("status", string(result.Status)).
		Bool("topper", result.IsTopper).
		Msg("exam session submitted")

	if err := s.deps.Results.Save(ctx, s.id, result); err != nil {
		s.log.Error().Err(err).Str("identifier", result.Identifier).Msg("persist result failed")
		return result, true, err
	}
	return result, true, nil
}

// Abandon stops the countdown of a session that will never be submitted.
func (s *ExamSession) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopClock != nil {
		s.stopClock()
	}
}

func (s *ExamSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the seconds left on the countdown.
func (s *ExamSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *ExamSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ContextID: s.id,
		State:     s.state.String(),
		Candidate: s.candidate,
		Answers:   s.answers.Clone(),
		Remaining: s.remaining,
		StartedAt: s.startedAt,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *ExamSession) notifyTick(remaining int) {
	if s.hooks.OnTick != nil {
		s.hooks.OnTick(remaining)
	}
}

func (s *ExamSession) notifySubmit(result domain.Result, reason SubmitReason) {
	if s.hooks.OnSubmit != nil {
		s.hooks.OnSubmit(result, reason)
	}
}

// NewIdentifier derives a roll number such as VMM25-LU-00042 from the city.
func NewIdentifier(prefix, city string, rnd Rand) string {
	code := []rune(strings.ToUpper(strings.TrimSpace(city)))
	for len(code) < 2 {
		code = append(code, 'X')
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, string(code[:2]), rnd.Intn(100000))
}
