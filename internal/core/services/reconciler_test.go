package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/storage/memory"
	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
)

type reconcilerFixture struct {
	client  *mockClient
	vault   *mockVault
	history *memory.HistoryStore
	rec     *Reconciler
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	client := &mockClient{profile: "acct:jo@hypothes.is", docs: make(map[string][]domain.Annotation)}
	vault := newMockVault()
	history := memory.NewHistoryStore()
	settings := memory.NewSettingsStore(connectedSettings())
	return &reconcilerFixture{
		client:  client,
		vault:   vault,
		history: history,
		rec:     NewReconciler(&mockFactory{client: client}, vault, history, settings),
	}
}

func (f *reconcilerFixture) seed(t *testing.T, entries ...domain.DocumentEntry) {
	t.Helper()
	h := domain.NewSyncHistory()
	h.Totals = domain.SyncTotals{Documents: len(entries), Highlights: 5}
	for _, e := range entries {
		h.DocumentMap[e.DocumentID] = e
	}
	require.NoError(t, f.history.Commit(context.Background(), h))
}

func TestListMissing(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seed(t,
		domain.DocumentEntry{DocumentID: "doc-a", Title: "Alpha", Path: "highlights/Alpha.md"},
		domain.DocumentEntry{DocumentID: "doc-b", Title: "Beta", Path: "highlights/Beta.md"},
		domain.DocumentEntry{DocumentID: "doc-c", Title: "Gamma", Path: "highlights/Gamma.md", PendingDeletion: true},
	)
	// Only Beta is still on disk.
	_, err := f.vault.Write(context.Background(), "highlights/Beta.md", domain.LocalFile{DocumentID: "doc-b", Body: "x"})
	require.NoError(t, err)

	missing, err := f.rec.ListMissing(context.Background())
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "Alpha", missing[0].Title)
	assert.Equal(t, "Gamma", missing[1].Title)
}

func TestListMissingEmpty(t *testing.T) {
	f := newReconcilerFixture(t)
	missing, err := f.rec.ListMissing(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestResolveKeepDeleted(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seed(t, domain.DocumentEntry{
		DocumentID: "doc-a", Title: "Alpha", Path: "highlights/Alpha.md", PendingDeletion: true,
	})

	require.NoError(t, f.rec.Resolve(context.Background(), "doc-a", driving.DecisionKeepDeleted))

	history, err := f.history.Load(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, history.DocumentMap, "doc-a")
	assert.Equal(t, 5, history.Totals.Highlights, "totals count what was ever synced")

	exists, _ := f.vault.Exists(context.Background(), "highlights/Alpha.md")
	assert.False(t, exists)
}

func TestResolveResync(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seed(t, domain.DocumentEntry{
		DocumentID: "doc-a", Title: "Alpha", URI: "https://a",
		Path: "highlights/Alpha.md", PendingDeletion: true, HighlightCount: 1,
	})
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.client.docs["https://a"] = []domain.Annotation{
		annotation("a1", "doc-a", "Alpha", "https://a", created),
		annotation("a2", "doc-a", "Alpha", "https://a", created.Add(time.Minute)),
	}

	require.NoError(t, f.rec.Resolve(context.Background(), "doc-a", driving.DecisionResync))

	file, err := f.vault.Read(context.Background(), "highlights/Alpha.md")
	require.NoError(t, err)
	assert.Contains(t, file.Body, "highlighted text a1")
	assert.Contains(t, file.Body, "highlighted text a2")

	history, err := f.history.Load(context.Background())
	require.NoError(t, err)
	entry := history.DocumentMap["doc-a"]
	assert.False(t, entry.PendingDeletion)
	assert.Equal(t, 2, entry.HighlightCount)
	assert.NotEmpty(t, entry.ContentHash)
}

func TestResolveResyncNotConnected(t *testing.T) {
	client := &mockClient{}
	vault := newMockVault()
	history := memory.NewHistoryStore()
	settings := memory.NewSettingsStore(domain.Settings{})
	rec := NewReconciler(&mockFactory{client: client}, vault, history, settings)

	h := domain.NewSyncHistory()
	h.DocumentMap["doc-a"] = domain.DocumentEntry{DocumentID: "doc-a", Path: "a.md"}
	require.NoError(t, history.Commit(context.Background(), h))

	err := rec.Resolve(context.Background(), "doc-a", driving.DecisionResync)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestResolveUnknownDocument(t *testing.T) {
	f := newReconcilerFixture(t)
	err := f.rec.Resolve(context.Background(), "nope", driving.DecisionKeepDeleted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveInvalidDecision(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seed(t, domain.DocumentEntry{DocumentID: "doc-a", Path: "a.md"})

	err := f.rec.Resolve(context.Background(), "doc-a", driving.DeletionDecision("shrug"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
