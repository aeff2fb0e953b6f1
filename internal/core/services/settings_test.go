package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/storage/memory"
	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

func newSettingsManager(client *mockClient, stored domain.Settings) (*SettingsManager, *memory.SettingsStore, *mockVault) {
	store := memory.NewSettingsStore(stored)
	vault := newMockVault()
	return NewSettingsManager(store, vault, &mockFactory{client: client}), store, vault
}

func TestSettingsGetAppliesDefaults(t *testing.T) {
	mgr, _, _ := newSettingsManager(&mockClient{}, domain.Settings{})

	settings, err := mgr.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTemplate, settings.Template)
	assert.Equal(t, domain.DefaultDateTimeFormat, settings.DateTimeFormat)
}

func TestConnectStoresValidatedToken(t *testing.T) {
	client := &mockClient{profile: "acct:jo@hypothes.is"}
	mgr, store, _ := newSettingsManager(client, domain.Settings{})

	settings, err := mgr.Connect(context.Background(), "  secret-token  ")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", settings.APIToken)
	assert.Equal(t, "acct:jo@hypothes.is", settings.UserID)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret-token", stored.APIToken)
}

func TestConnectRejectedTokenKeepsSettings(t *testing.T) {
	client := &mockClient{profileErr: domain.ErrAuthFailed}
	mgr, store, _ := newSettingsManager(client, domain.Settings{APIToken: "old", UserID: "acct:old@hypothes.is"})

	_, err := mgr.Connect(context.Background(), "bad-token")
	require.ErrorIs(t, err, domain.ErrAuthFailed)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", stored.APIToken, "a failed connect never clobbers the stored token")
}

func TestConnectEmptyToken(t *testing.T) {
	mgr, _, _ := newSettingsManager(&mockClient{}, domain.Settings{})
	_, err := mgr.Connect(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDisconnectKeepsOtherSettings(t *testing.T) {
	mgr, store, _ := newSettingsManager(&mockClient{}, domain.Settings{
		APIToken: "tok", UserID: "acct:jo@hypothes.is", HighlightsFolder: "highlights",
	})

	require.NoError(t, mgr.Disconnect(context.Background()))

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored.APIToken)
	assert.Empty(t, stored.UserID)
	assert.Equal(t, "highlights", stored.HighlightsFolder)
}

func TestSetTemplateValidates(t *testing.T) {
	mgr, store, _ := newSettingsManager(&mockClient{}, domain.Settings{})

	err := mgr.SetTemplate(context.Background(), "{{#highlights}}{{text}}")
	require.ErrorIs(t, err, domain.ErrInvalidTemplate)

	require.NoError(t, mgr.SetTemplate(context.Background(), "# {{title}}\n{{#highlights}}> {{text}}\n{{/highlights}}"))
	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stored.Template, "{{title}}")
}

func TestSetHighlightsFolderTrims(t *testing.T) {
	mgr, store, _ := newSettingsManager(&mockClient{}, domain.Settings{})

	require.NoError(t, mgr.SetHighlightsFolder(context.Background(), " /notes/highlights/ "))
	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "notes/highlights", stored.HighlightsFolder)
}

func TestSetVaultDir(t *testing.T) {
	mgr, store, _ := newSettingsManager(&mockClient{}, domain.Settings{})

	assert.ErrorIs(t, mgr.SetVaultDir(context.Background(), "  "), domain.ErrInvalidInput)

	require.NoError(t, mgr.SetVaultDir(context.Background(), "/home/jo/vault"))
	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/home/jo/vault", stored.VaultDir)
}

func TestSetDateTimeFormat(t *testing.T) {
	mgr, store, _ := newSettingsManager(&mockClient{}, domain.Settings{})

	assert.ErrorIs(t, mgr.SetDateTimeFormat(context.Background(), ""), domain.ErrInvalidInput)

	require.NoError(t, mgr.SetDateTimeFormat(context.Background(), "MMMM D, YYYY"))
	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MMMM D, YYYY", stored.DateTimeFormat)
}

func TestSetSyncOnBoot(t *testing.T) {
	mgr, store, _ := newSettingsManager(&mockClient{}, domain.Settings{})

	require.NoError(t, mgr.SetSyncOnBoot(context.Background(), true))
	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.SyncOnBoot)
}

func TestFolders(t *testing.T) {
	mgr, _, vault := newSettingsManager(&mockClient{}, domain.Settings{})
	_, err := vault.Write(context.Background(), "highlights/a.md", domain.LocalFile{Body: "x"})
	require.NoError(t, err)

	folders, err := mgr.Folders(context.Background())
	require.NoError(t, err)
	assert.Contains(t, folders, "highlights")
}
