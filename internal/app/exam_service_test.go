package app

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/domain"
	"vmm-exam-service/internal/validator"
)

type mapSessions struct {
	mu       sync.Mutex
	sessions map[string]*ExamSession
}

func (m *mapSessions) Get(id string) (*ExamSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *mapSessions) Put(s *ExamSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

func (m *mapSessions) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

type staticBanks map[string]domain.QuestionBank

func (b staticBanks) GetBank(_ context.Context, id string) (domain.QuestionBank, error) {
	if bank, ok := b[id]; ok {
		return bank, nil
	}
	return domain.QuestionBank{}, domain.ErrBankNotFound
}

type serviceFixture struct {
	svc         *ExamService
	store       *memStore
	scheduler   *manualScheduler
	leaderboard *LeaderboardManager
}

func newServiceFixture(t *testing.T, rnd Rand, bankID string) *serviceFixture {
	t.Helper()
	f := &serviceFixture{store: newMemStore(), scheduler: &manualScheduler{}}
	f.leaderboard = newLeaderboard(f.store, rnd)
	deps := SessionDeps{
		Policy:           newPolicy(t, config.Default().Scoring.Exam, rnd),
		Results:          NewResultStore(f.store, zerolog.Nop()),
		Validator:        validator.New(),
		Scheduler:        f.scheduler,
		Rand:             rnd,
		Now:              fixedClock,
		IdentifierPrefix: "VMM25",
		Log:              zerolog.Nop(),
	}
	f.svc = NewExamService(&mapSessions{sessions: map[string]*ExamSession{}}, staticBanks(catalog.Banks()), bankID, deps, f.leaderboard)
	return f
}

func TestQuestionsHideAnswerKey(t *testing.T) {
	f := newServiceFixture(t, &scriptedRand{}, catalog.ExamBankID)
	bank, err := f.svc.Questions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, bank.Len())
	for _, q := range bank.Questions {
		assert.Empty(t, q.CorrectOption)
	}
}

func TestBeginOneSessionPerContext(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &scriptedRand{}, catalog.ExamBankID)

	_, err := f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{})
	require.NoError(t, err)

	_, err = f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{})
	assert.ErrorIs(t, err, domain.ErrSessionInProgress)

	_, err = f.svc.Begin(ctx, "ctx-2", asha(), SessionHooks{})
	require.NoError(t, err, "other contexts are independent")

	_, err = f.svc.Submit(ctx, "ctx-1", true)
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{})
	require.NoError(t, err, "a finished context may start again")
}

func TestBeginInvalidCandidateLeavesNoSession(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &scriptedRand{}, catalog.ExamBankID)

	c := asha()
	c.Branch = "Mumbai"
	_, err := f.svc.Begin(ctx, "ctx-1", c, SessionHooks{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Session(ctx, "ctx-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestBeginUnknownBank(t *testing.T) {
	f := newServiceFixture(t, &scriptedRand{}, "missing")
	_, err := f.svc.Begin(context.Background(), "ctx-1", asha(), SessionHooks{})
	assert.ErrorIs(t, err, domain.ErrBankNotFound)
}

func TestSubmitPublishesTopper(t *testing.T) {
	ctx := context.Background()
	// 70+29 selected, topper, identifier 42, award and role draws
	rnd := &scriptedRand{ints: []int{29, 42, 5, 6}, floats: []float64{0.05}}
	f := newServiceFixture(t, rnd, catalog.ExamBankID)

	var published []domain.Result
	_, err := f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{
		OnSubmit: func(r domain.Result, _ SubmitReason) { published = append(published, r) },
	})
	require.NoError(t, err)
	for id := 1; id <= 10; id++ {
		require.NoError(t, f.svc.Answer(ctx, "ctx-1", id, "a"))
	}

	result, err := f.svc.Submit(ctx, "ctx-1", false)
	require.NoError(t, err)
	require.True(t, result.IsTopper)
	assert.Equal(t, []domain.Result{result}, published)

	lb := f.leaderboard.List(ctx)
	require.Equal(t, 1, countIdentifier(lb, "VMM25-LU-00042"))
	assert.Equal(t, "VMM25-LU-00042", lb.Entries[0].Identifier)
	assert.Equal(t, float64(99), lb.Entries[0].Score)
	assert.Equal(t, catalog.Awards[5], lb.Entries[0].Award)

	snap, err := f.svc.Session(ctx, "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, "submitted", snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, result, *snap.Result)
}

func TestTimedOutTopperPublishedWhenResultSaveFails(t *testing.T) {
	ctx := context.Background()
	rnd := &scriptedRand{ints: []int{29, 42, 5, 6}, floats: []float64{0.05}}
	f := newServiceFixture(t, rnd, catalog.ExamBankID)
	f.store.failPrefix = "result:"

	var published []domain.Result
	_, err := f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{
		OnSubmit: func(r domain.Result, _ SubmitReason) { published = append(published, r) },
	})
	require.NoError(t, err)
	for id := 1; id <= 10; id++ {
		require.NoError(t, f.svc.Answer(ctx, "ctx-1", id, "a"))
	}

	for i := 0; i < 600; i++ {
		f.scheduler.fn()
	}

	require.Len(t, published, 1)
	assert.True(t, published[0].IsTopper)
	assert.Equal(t, 1, countIdentifier(f.leaderboard.List(ctx), "VMM25-LU-00042"))
	assert.Zero(t, f.store.saveCount(currentResultKey("ctx-1")))
}

func TestAbandonStopsClockAndDropsSession(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &scriptedRand{}, catalog.ExamBankID)

	_, err := f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{})
	require.NoError(t, err)

	f.svc.Abandon(ctx, "ctx-1")
	assert.Equal(t, 1, f.scheduler.cancelled)
	assert.ErrorIs(t, f.svc.Answer(ctx, "ctx-1", 1, "a"), domain.ErrSessionNotFound)
	_, err = f.svc.Submit(ctx, "ctx-1", true)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = f.svc.Begin(ctx, "ctx-1", asha(), SessionHooks{})
	require.NoError(t, err)
}
