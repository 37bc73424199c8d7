package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, dbPath, namespace string) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(dbPath, namespace)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, filepath.Join(t.TempDir(), "data", "test.db"), "tracker")

	_, ok, err := repo.Get(ctx, "expenses")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Put(ctx, map[string]string{"expenses": "[]", "budget": `"100"`}))
	require.NoError(t, repo.Put(ctx, map[string]string{"budget": `"200"`}))

	v, ok, err := repo.Get(ctx, "budget")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"200"`, v)

	keys, err := repo.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"budget", "expenses"}, keys)
}

func TestSQLiteRepository_ClearIsScopedToNamespace(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "shared.db")
	mine := newTestRepo(t, dbPath, "mine")

	require.NoError(t, mine.Put(ctx, map[string]string{"expenses": "[]"}))

	other := newTestRepo(t, dbPath, "other")
	require.NoError(t, other.Put(ctx, map[string]string{"expenses": "[1]"}))

	require.NoError(t, mine.Clear(ctx))

	_, ok, err := mine.Get(ctx, "expenses")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := other.Get(ctx, "expenses")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", v)
}

func TestSQLiteRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	first, err := NewSQLiteRepository(dbPath, "tracker")
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, map[string]string{"budget": `"50"`}))
	require.NoError(t, first.Close())

	second := newTestRepo(t, dbPath, "tracker")
	v, ok, err := second.Get(ctx, "budget")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"50"`, v)
}

func TestNewSQLiteRepository_RequiresNamespace(t *testing.T) {
	_, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "x.db"), "")
	assert.Error(t, err)
}
