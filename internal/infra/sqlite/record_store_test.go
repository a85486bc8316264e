package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/domain"
)

func openMemory(t *testing.T) *RecordStore {
	t.Helper()
	store, err := Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	_, err := store.Load(ctx, "leaderboard:toppers")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Save(ctx, "leaderboard:toppers", []byte(`[]`)))
	require.NoError(t, store.Save(ctx, "leaderboard:toppers", []byte(`[{"identifier":"x"}]`)))

	data, err := store.Load(ctx, "leaderboard:toppers")
	require.NoError(t, err)
	assert.Equal(t, `[{"identifier":"x"}]`, string(data))
}

func TestRecordStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vmm.db")

	store, err := Open(path)
	require.NoError(t, err)
	results := app.NewResultStore(store, zerolog.Nop())
	saved := domain.Result{
		Name:       "Asha",
		Identifier: "VMM25-LU-00042",
		Score:      82,
		Branch:     "Lucknow",
		Timestamp:  time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Status:     domain.StatusSelected,
	}
	require.NoError(t, results.Save(ctx, "ctx-1", saved))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, ok := app.NewResultStore(reopened, zerolog.Nop()).Load(ctx, "ctx-1")
	require.True(t, ok)
	assert.Equal(t, saved, loaded)
}
