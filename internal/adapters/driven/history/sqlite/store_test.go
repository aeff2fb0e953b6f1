package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadBeforeFirstCommit(t *testing.T) {
	store := newTestStore(t)

	history, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history.Cursor)
	assert.True(t, history.LastSync.IsZero())
	assert.Empty(t, history.DocumentMap)
	assert.Zero(t, history.Totals)
}

func TestCommitAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	history := domain.NewSyncHistory()
	history.Cursor = "2024-03-01T10:00:00.000000+00:00"
	history.LastSync = time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)
	history.Totals = domain.SyncTotals{Documents: 2, Highlights: 9}
	history.DocumentMap["doc-a"] = domain.DocumentEntry{
		DocumentID:     "doc-a",
		Title:          "Alpha",
		URI:            "https://a",
		Path:           "highlights/Alpha.md",
		ContentHash:    "abc123",
		HighlightCount: 4,
		UpdatedAt:      time.Date(2024, 3, 1, 10, 4, 0, 0, time.UTC),
	}
	history.DocumentMap["doc-b"] = domain.DocumentEntry{
		DocumentID:      "doc-b",
		Title:           "Beta",
		Path:            "highlights/Beta.md",
		PendingDeletion: true,
	}

	require.NoError(t, store.Commit(ctx, history))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.Cursor, loaded.Cursor)
	assert.True(t, history.LastSync.Equal(loaded.LastSync))
	assert.Equal(t, history.Totals, loaded.Totals)
	require.Len(t, loaded.DocumentMap, 2)

	a := loaded.DocumentMap["doc-a"]
	assert.Equal(t, "Alpha", a.Title)
	assert.Equal(t, "https://a", a.URI)
	assert.Equal(t, "abc123", a.ContentHash)
	assert.Equal(t, 4, a.HighlightCount)
	assert.False(t, a.PendingDeletion)
	assert.True(t, a.UpdatedAt.Equal(history.DocumentMap["doc-a"].UpdatedAt))

	assert.True(t, loaded.DocumentMap["doc-b"].PendingDeletion)
}

func TestCommitReplacesDocumentMap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := domain.NewSyncHistory()
	first.DocumentMap["doc-a"] = domain.DocumentEntry{DocumentID: "doc-a", Path: "a.md"}
	first.DocumentMap["doc-b"] = domain.DocumentEntry{DocumentID: "doc-b", Path: "b.md"}
	require.NoError(t, store.Commit(ctx, first))

	// doc-b resolved as keep-deleted: the next commit carries only doc-a.
	second := domain.NewSyncHistory()
	second.Cursor = "c2"
	second.DocumentMap["doc-a"] = domain.DocumentEntry{DocumentID: "doc-a", Path: "moved.md"}
	require.NoError(t, store.Commit(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c2", loaded.Cursor)
	require.Len(t, loaded.DocumentMap, 1)
	assert.Equal(t, "moved.md", loaded.DocumentMap["doc-a"].Path)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	history := domain.NewSyncHistory()
	history.Cursor = "c1"
	history.Totals = domain.SyncTotals{Documents: 1, Highlights: 3}
	history.DocumentMap["doc-a"] = domain.DocumentEntry{DocumentID: "doc-a", Path: "a.md"}
	require.NoError(t, store.Commit(ctx, history))

	require.NoError(t, store.Reset(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Cursor)
	assert.Empty(t, loaded.DocumentMap)
	assert.Zero(t, loaded.Totals)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening the same database must not re-run migrations.
	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	history, err := second.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, history)
}
