package cli

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
)

// --- Mock implementations for CLI testing ---

// mockSyncService implements driving.SyncService.
type mockSyncService struct {
	report   *driving.SyncReport
	startErr error
	resetErr error
	started  int
	resets   int
}

func (m *mockSyncService) StartSync(_ context.Context) (*driving.SyncReport, error) {
	m.started++
	if m.startErr != nil {
		return nil, m.startErr
	}
	if m.report != nil {
		return m.report, nil
	}
	return &driving.SyncReport{}, nil
}

func (m *mockSyncService) Status() driving.SyncStatus {
	return driving.SyncStatus{State: driving.StateIdle}
}

func (m *mockSyncService) ResetSyncHistory(_ context.Context) error {
	m.resets++
	return m.resetErr
}

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings   domain.Settings
	getErr     error
	connectErr error

	lastTemplate string
	lastFolder   string
	folders      []string
}

func (m *mockSettingsService) Get(_ context.Context) (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	settings := m.settings.WithDefaults()
	return &settings, nil
}

func (m *mockSettingsService) Connect(_ context.Context, apiToken string) (*domain.Settings, error) {
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	m.settings.APIToken = apiToken
	m.settings.UserID = "acct:jo@hypothes.is"
	settings := m.settings
	return &settings, nil
}

func (m *mockSettingsService) Disconnect(_ context.Context) error {
	m.settings.APIToken = ""
	m.settings.UserID = ""
	return nil
}

func (m *mockSettingsService) SetTemplate(_ context.Context, template string) error {
	m.lastTemplate = template
	return nil
}

func (m *mockSettingsService) SetHighlightsFolder(_ context.Context, folder string) error {
	m.lastFolder = folder
	return nil
}

func (m *mockSettingsService) SetVaultDir(_ context.Context, dir string) error {
	m.settings.VaultDir = dir
	return nil
}

func (m *mockSettingsService) SetDateTimeFormat(_ context.Context, format string) error {
	m.settings.DateTimeFormat = format
	return nil
}

func (m *mockSettingsService) SetSyncOnBoot(_ context.Context, enabled bool) error {
	m.settings.SyncOnBoot = enabled
	return nil
}

func (m *mockSettingsService) Folders(_ context.Context) ([]string, error) {
	return m.folders, nil
}

// mockReconciler implements driving.DeletedFileReconciler.
type mockReconciler struct {
	missing      []domain.DocumentEntry
	listErr      error
	resolveErr   error
	lastID       string
	lastDecision driving.DeletionDecision
}

func (m *mockReconciler) ListMissing(_ context.Context) ([]domain.DocumentEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.missing, nil
}

func (m *mockReconciler) Resolve(_ context.Context, documentID string, decision driving.DeletionDecision) error {
	m.lastID = documentID
	m.lastDecision = decision
	return m.resolveErr
}
