package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/domain"
)

// Drawer produces an outcome without answers. *ScoringPolicy implements it.
type Drawer interface {
	Draw() (Outcome, error)
}

// ResultLookupService serves results by identifier. Unknown identifiers get a
// synthesized result that is remembered, so repeated lookups return the same value.
type ResultLookupService struct {
	results     *ResultStore
	leaderboard *LeaderboardManager
	policy      Drawer
	rnd         Rand
	now         func() time.Time
	log         zerolog.Logger

	locks keyedMutex
}

func NewResultLookupService(results *ResultStore, leaderboard *LeaderboardManager, policy Drawer, rnd Rand, log zerolog.Logger) *ResultLookupService {
	return &ResultLookupService{
		results:     results,
		leaderboard: leaderboard,
		policy:      policy,
		rnd:         rnd,
		now:         time.Now,
		log:         log.With().Str("component", "result_lookup").Logger(),
	}
}

// WithClock overrides the timestamp source.
func (s *ResultLookupService) WithClock(now func() time.Time) *ResultLookupService {
	s.now = now
	return s
}

// Resolve returns the context's own result when the identifier matches it,
// else the remembered synthesized result, else a freshly synthesized one.
// Toppers are upserted into the leaderboard on every resolution.
func (s *ResultLookupService) Resolve(ctx context.Context, contextID, identifier string) (domain.Result, error) {
	if strings.TrimSpace(identifier) == "" {
		return domain.Result{}, domain.NewValidationError("identifier", "is required")
	}

	unlock := s.locks.Lock(identifier)
	defer unlock()

	if r, ok := s.results.Load(ctx, contextID); ok && r.Identifier == identifier {
		return r, s.publish(ctx, r)
	}
	if r, ok := s.results.LoadSynthesized(ctx, identifier); ok {
		return r, s.publish(ctx, r)
	}
	return s.synthesizeLocked(ctx, identifier)
}

// Regenerate discards any remembered synthesized result for identifier and draws a new one.
// The leaderboard entry of a repeated topper is updated, never duplicated.
func (s *ResultLookupService) Regenerate(ctx context.Context, identifier string) (domain.Result, error) {
	if strings.TrimSpace(identifier) == "" {
		return domain.Result{}, domain.NewValidationError("identifier", "is required")
	}

	unlock := s.locks.Lock(identifier)
	defer unlock()
	return s.synthesizeLocked(ctx, identifier)
}

// View decorates a result with display remarks.
func (s *ResultLookupService) View(r domain.Result) domain.ResultView {
	return Decorate(r, s.rnd)
}

func (s *ResultLookupService) synthesizeLocked(ctx context.Context, identifier string) (domain.Result, error) {
	outcome, err := s.policy.Draw()
	if err != nil {
		return domain.Result{}, fmt.Errorf("synthesize %s: %w", identifier, err)
	}

	r := domain.Result{
		Name:       synthesizedName(identifier),
		Identifier: identifier,
		Score:      outcome.Score,
		Branch:     catalog.SynthesisBranches[s.rnd.Intn(len(catalog.SynthesisBranches))],
		Timestamp:  s.now().UTC(),
		Status:     outcome.Status,
		IsTopper:   outcome.IsTopper,
	}
	if err := s.results.SaveSynthesized(ctx, r); err != nil {
		return domain.Result{}, err
	}

	s.log.Info().
		Str("identifier", identifier).
		Int("score", r.Score).
		Str("status", string(r.Status)).
		Bool("topper", r.IsTopper).
		Msg("synthesized result")
	return r, s.publish(ctx, r)
}

func (s *ResultLookupService) publish(ctx context.Context, r domain.Result) error {
	if !r.IsTopper {
		return nil
	}
	if _, err := s.leaderboard.Upsert(ctx, TopperEntry(r)); err != nil {
		return fmt.Errorf("publish topper %s: %w", r.Identifier, err)
	}
	return nil
}

func synthesizedName(identifier string) string {
	runes := []rune(identifier)
	if len(runes) > 5 {
		runes = runes[len(runes)-5:]
	}
	return "Candidate " + string(runes)
}

// keyedMutex serializes work per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
