package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/domain"
)

// LeaderboardSize bounds the ranked topper list.
const LeaderboardSize = 10

const leaderboardKey = "leaderboard:toppers"

// LeaderboardManager maintains the bounded, identifier-unique topper ranking.
// Upsert, sort and truncate happen under one lock and are persisted together.
type LeaderboardManager struct {
	store Persistence
	rnd   Rand
	now   func() time.Time
	log   zerolog.Logger

	mu sync.Mutex
}

func NewLeaderboardManager(store Persistence, rnd Rand, log zerolog.Logger) *LeaderboardManager {
	return NewLeaderboardManagerWithClock(store, rnd, log, time.Now)
}

// NewLeaderboardManagerWithClock is used by tests for deterministic timestamps.
func NewLeaderboardManagerWithClock(store Persistence, rnd Rand, log zerolog.Logger, now func() time.Time) *LeaderboardManager {
	return &LeaderboardManager{
		store: store,
		rnd:   rnd,
		now:   now,
		log:   log.With().Str("component", "leaderboard").Logger(),
	}
}

// List returns the current ranking, rank = index + 1.
func (m *LeaderboardManager) List(ctx context.Context) domain.Leaderboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(m.load(ctx))
}

// Upsert inserts or updates the entry keyed by its identifier. An existing entry
// keeps its award; a new one draws award and role when not supplied.
func (m *LeaderboardManager) Upsert(ctx context.Context, entry domain.LeaderboardEntry) (domain.Leaderboard, error) {
	if entry.Identifier == "" {
		return domain.Leaderboard{}, domain.NewValidationError("identifier", "is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.load(ctx)
	found := false
	for i := range entries {
		if entries[i].Identifier != entry.Identifier {
			continue
		}
		found = true
		entries[i].Score = entry.Score
		if entry.Name != "" {
			entries[i].Name = entry.Name
		}
		if entry.City != "" {
			entries[i].City = entry.City
		}
		if entry.Role != "" {
			entries[i].Role = entry.Role
		}
		break
	}
	if !found {
		if entry.Award == "" {
			entry.Award = catalog.Awards[m.rnd.Intn(len(catalog.Awards))]
		}
		if entry.Role == "" {
			entry.Role = catalog.Roles[m.rnd.Intn(len(catalog.Roles))]
		}
		entries = append(entries, entry)
	}

	ranked, evicted := normalizeEntries(entries)
	for _, e := range evicted {
		m.log.Info().Str("identifier", e.Identifier).Float64("score", e.Score).Msg("leaderboard entry evicted")
	}

	data, err := json.Marshal(ranked)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := m.store.Save(ctx, leaderboardKey, data); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("save leaderboard: %w", err)
	}

	m.log.Info().Str("identifier", entry.Identifier).Bool("updated", found).Float64("score", entry.Score).Msg("leaderboard upsert")
	return m.snapshot(ranked), nil
}

func (m *LeaderboardManager) snapshot(entries []domain.LeaderboardEntry) domain.Leaderboard {
	return domain.Leaderboard{
		Entries:   domain.RankEntries(entries),
		UpdatedAt: m.now().UTC(),
	}
}

// load falls back to the seeded toppers when nothing usable is stored.
func (m *LeaderboardManager) load(ctx context.Context) []domain.LeaderboardEntry {
	data, err := m.store.Load(ctx, leaderboardKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			m.log.Warn().Err(err).Msg("leaderboard load failed, using defaults")
		}
		return catalog.DefaultToppers()
	}

	var stored []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		m.log.Warn().Err(err).Msg("malformed leaderboard, using defaults")
		return catalog.DefaultToppers()
	}
	valid := stored[:0]
	for _, e := range stored {
		if e.Identifier != "" {
			valid = append(valid, e)
		}
	}
	ranked, _ := normalizeEntries(valid)
	return ranked
}

// normalizeEntries drops duplicate identifiers (first wins), sorts by score
// descending keeping the relative order of ties, and truncates.
func normalizeEntries(entries []domain.LeaderboardEntry) (kept, evicted []domain.LeaderboardEntry) {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]domain.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Identifier]; dup {
			continue
		}
		seen[e.Identifier] = struct{}{}
		unique = append(unique, e)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Score > unique[j].Score
	})

	if len(unique) > LeaderboardSize {
		return unique[:LeaderboardSize], unique[LeaderboardSize:]
	}
	return unique, nil
}

// TopperEntry derives the leaderboard entry published for a topper result.
func TopperEntry(r domain.Result) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		Name:       r.Name,
		City:       r.Branch,
		Identifier: r.Identifier,
		Score:      float64(r.Score),
	}
}
