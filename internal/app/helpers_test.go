package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/domain"
	"vmm-exam-service/internal/validator"
)

// scriptedRand replays fixed draws; an exhausted script yields zero.
type scriptedRand struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

// manualScheduler records the callback so tests drive the clock themselves.
type manualScheduler struct {
	mu        sync.Mutex
	fn        func()
	scheduled int
	cancelled int
}

func (m *manualScheduler) Schedule(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	m.scheduled++
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cancelled++
	}
}

// memStore is an in-memory Persistence that counts writes.
// Saves to keys starting with failPrefix fail when it is set.
type memStore struct {
	mu         sync.Mutex
	data       map[string][]byte
	saves      map[string]int
	failPrefix string
}

var errStoreDown = errors.New("store unavailable")

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), saves: make(map[string]int)}
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPrefix != "" && strings.HasPrefix(key, m.failPrefix) {
		return errStoreDown
	}
	m.data[key] = append([]byte(nil), data...)
	m.saves[key]++
	return nil
}

func (m *memStore) saveCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[key]
}

// countingEvaluator counts policy evaluations.
type countingEvaluator struct {
	Evaluator
	mu    sync.Mutex
	calls int
}

func (c *countingEvaluator) Evaluate(a Attempt) (Outcome, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Evaluator.Evaluate(a)
}

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func asha() domain.Candidate {
	return domain.Candidate{
		Name:   "Asha",
		City:   "Lucknow",
		Phone:  "9876543210",
		Email:  "asha@example.com",
		Branch: "Lucknow",
	}
}

type sessionFixture struct {
	session   *ExamSession
	store     *memStore
	scheduler *manualScheduler
	evaluator *countingEvaluator
	rnd       *scriptedRand
	ticks     []int
	submits   []SubmitReason
	results   []domain.Result
}

func newPolicy(t *testing.T, cfg config.Policy, rnd Rand) *ScoringPolicy {
	t.Helper()
	policy, err := NewScoringPolicy(cfg, rnd)
	require.NoError(t, err)
	return policy
}

func newSessionFixture(t *testing.T, rnd *scriptedRand) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		store:     newMemStore(),
		scheduler: &manualScheduler{},
		rnd:       rnd,
	}
	f.evaluator = &countingEvaluator{Evaluator: newPolicy(t, config.Default().Scoring.Exam, rnd)}
	deps := SessionDeps{
		Policy:           f.evaluator,
		Results:          NewResultStore(f.store, zerolog.Nop()),
		Validator:        validator.New(),
		Scheduler:        f.scheduler,
		Rand:             rnd,
		Now:              fixedClock,
		IdentifierPrefix: "VMM25",
		Log:              zerolog.Nop(),
	}
	hooks := SessionHooks{
		OnTick: func(remaining int) { f.ticks = append(f.ticks, remaining) },
		OnSubmit: func(r domain.Result, reason SubmitReason) {
			f.submits = append(f.submits, reason)
			f.results = append(f.results, r)
		},
	}
	f.session = NewExamSession("ctx-1", catalog.ExamBank(), deps, hooks)
	return f
}

func answerAll(t *testing.T, s *ExamSession, n int) {
	t.Helper()
	for _, q := range s.Bank().Questions[:n] {
		require.NoError(t, s.RecordAnswer(q.ID, q.Options[0].ID))
	}
}
