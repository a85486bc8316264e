package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"vmm-exam-service/internal/domain"
)

// Persistence is the storage port behind results and the leaderboard
// (in-memory, Redis, SQLite). Load returns domain.ErrNotFound for absent keys.
type Persistence interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

func currentResultKey(contextID string) string {
	return "result:current:" + contextID
}

func synthesizedResultKey(identifier string) string {
	return "result:synth:" + identifier
}

// ResultStore keeps the single "current result" slot of each browsing context,
// plus an index of fabricated results by identifier.
type ResultStore struct {
	store Persistence
	log   zerolog.Logger
}

func NewResultStore(store Persistence, log zerolog.Logger) *ResultStore {
	return &ResultStore{store: store, log: log.With().Str("component", "result_store").Logger()}
}

// Save overwrites the context's current result.
func (s *ResultStore) Save(ctx context.Context, contextID string, r domain.Result) error {
	return s.put(ctx, currentResultKey(contextID), r)
}

// Load returns the context's current result. Missing or malformed data is absence.
func (s *ResultStore) Load(ctx context.Context, contextID string) (domain.Result, bool) {
	return s.get(ctx, currentResultKey(contextID))
}

// SaveSynthesized indexes a fabricated result under its identifier.
func (s *ResultStore) SaveSynthesized(ctx context.Context, r domain.Result) error {
	return s.put(ctx, synthesizedResultKey(r.Identifier), r)
}

// LoadSynthesized returns a previously fabricated result for identifier.
func (s *ResultStore) LoadSynthesized(ctx context.Context, identifier string) (domain.Result, bool) {
	return s.get(ctx, synthesizedResultKey(identifier))
}

func (s *ResultStore) put(ctx context.Context, key string, r domain.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := s.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save result %s: %w", key, err)
	}
	return nil
}

func (s *ResultStore) get(ctx context.Context, key string) (domain.Result, bool) {
	data, err := s.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("result load failed, treating as absent")
		}
		return domain.Result{}, false
	}
	var r domain.Result
	if err := json.Unmarshal(data, &r); err != nil || !wellFormed(r) {
		s.log.Warn().Err(err).Str("key", key).Msg("malformed stored result, treating as absent")
		return domain.Result{}, false
	}
	return r, true
}

func wellFormed(r domain.Result) bool {
	if r.Identifier == "" || r.Score < 0 || r.Score > 100 {
		return false
	}
	switch r.Status {
	case domain.StatusSelected, domain.StatusWaitlisted, domain.StatusRejected:
		return true
	}
	return false
}
