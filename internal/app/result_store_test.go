package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmm-exam-service/internal/domain"
)

func sampleResult() domain.Result {
	return domain.Result{
		Name:       "Asha",
		Identifier: "VMM25-LU-00042",
		Score:      82,
		Branch:     "Lucknow",
		Timestamp:  time.Date(2025, 3, 14, 10, 30, 15, 123456789, time.UTC),
		Status:     domain.StatusSelected,
		IsTopper:   true,
		Answers:    domain.AnswerSet{1: "b", 2: "c"},
	}
}

func TestResultStoreRoundTripIsByteEqual(t *testing.T) {
	ctx := context.Background()
	backend := newMemStore()
	store := NewResultStore(backend, zerolog.Nop())

	saved := sampleResult()
	require.NoError(t, store.Save(ctx, "ctx-1", saved))

	loaded, ok := store.Load(ctx, "ctx-1")
	require.True(t, ok)
	assert.Equal(t, saved, loaded)

	want, err := json.Marshal(saved)
	require.NoError(t, err)
	got, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, want, backend.data[currentResultKey("ctx-1")])
}

func TestResultStoreSecondSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore(newMemStore(), zerolog.Nop())

	first := sampleResult()
	second := sampleResult()
	second.Identifier = "VMM25-PA-00007"
	second.Score = 45
	second.Status = domain.StatusRejected

	require.NoError(t, store.Save(ctx, "ctx-1", first))
	require.NoError(t, store.Save(ctx, "ctx-1", second))

	loaded, ok := store.Load(ctx, "ctx-1")
	require.True(t, ok)
	assert.Equal(t, second, loaded)

	_, ok = store.Load(ctx, "ctx-2")
	assert.False(t, ok, "slots are per browsing context")
}

func TestResultStoreTreatsMalformedAsAbsent(t *testing.T) {
	ctx := context.Background()
	tests := map[string]string{
		"not json":       `{"name":`,
		"score too high": `{"name":"x","identifier":"id","score":140,"status":"Selected"}`,
		"unknown status": `{"name":"x","identifier":"id","score":40,"status":"Maybe"}`,
		"no identifier":  `{"name":"x","score":40,"status":"Rejected"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			backend := newMemStore()
			backend.data[currentResultKey("ctx-1")] = []byte(raw)

			_, ok := NewResultStore(backend, zerolog.Nop()).Load(ctx, "ctx-1")
			assert.False(t, ok)
		})
	}
}

func TestResultStoreSynthesizedIndex(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore(newMemStore(), zerolog.Nop())

	r := sampleResult()
	require.NoError(t, store.SaveSynthesized(ctx, r))

	loaded, ok := store.LoadSynthesized(ctx, r.Identifier)
	require.True(t, ok)
	assert.Equal(t, r, loaded)

	_, ok = store.Load(ctx, r.Identifier)
	assert.False(t, ok, "synthesized results never occupy a context slot")
}
