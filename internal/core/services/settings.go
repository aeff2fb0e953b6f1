package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
	"github.com/mschrader15/hypothesis-sync/internal/logger"
	"github.com/mschrader15/hypothesis-sync/internal/render"
)

// Ensure SettingsManager implements the interface.
var _ driving.SettingsService = (*SettingsManager)(nil)

// SettingsManager validates and persists engine configuration.
type SettingsManager struct {
	store   driven.SettingsStore
	vault   driven.VaultStore
	factory driven.ClientFactory
}

// NewSettingsManager creates a settings service.
func NewSettingsManager(store driven.SettingsStore, vault driven.VaultStore, factory driven.ClientFactory) *SettingsManager {
	return &SettingsManager{store: store, vault: vault, factory: factory}
}

// Get retrieves current settings with defaults applied.
func (m *SettingsManager) Get(ctx context.Context) (*domain.Settings, error) {
	settings, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	withDefaults := settings.WithDefaults()
	return &withDefaults, nil
}

// Connect validates the token against the remote service before storing it.
// A rejected token leaves the previous settings untouched.
func (m *SettingsManager) Connect(ctx context.Context, apiToken string) (*domain.Settings, error) {
	apiToken = strings.TrimSpace(apiToken)
	if apiToken == "" {
		return nil, fmt.Errorf("api token: %w", domain.ErrInvalidInput)
	}

	settings, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	probe := *settings
	probe.APIToken = apiToken
	client, err := m.factory.Create(ctx, probe)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	userID, err := client.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}

	settings.APIToken = apiToken
	settings.UserID = userID
	if err := m.store.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	logger.Info("Connected as %s", settings.Username())
	return settings, nil
}

// Disconnect invalidates the stored token. Sync history is kept so a
// reconnect resumes from the previous cursor.
func (m *SettingsManager) Disconnect(ctx context.Context) error {
	return m.update(ctx, func(s *domain.Settings) error {
		s.APIToken = ""
		s.UserID = ""
		return nil
	})
}

// SetTemplate validates and stores the highlights template.
func (m *SettingsManager) SetTemplate(ctx context.Context, template string) error {
	if err := render.Validate(template); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}
	return m.update(ctx, func(s *domain.Settings) error {
		s.Template = template
		return nil
	})
}

// SetHighlightsFolder stores the vault-relative target folder.
func (m *SettingsManager) SetHighlightsFolder(ctx context.Context, folder string) error {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	return m.update(ctx, func(s *domain.Settings) error {
		s.HighlightsFolder = folder
		return nil
	})
}

// SetVaultDir stores the vault root directory.
func (m *SettingsManager) SetVaultDir(ctx context.Context, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("vault dir: %w", domain.ErrInvalidInput)
	}
	return m.update(ctx, func(s *domain.Settings) error {
		s.VaultDir = dir
		return nil
	})
}

// SetDateTimeFormat validates the moment-style layout and stores it.
func (m *SettingsManager) SetDateTimeFormat(ctx context.Context, format string) error {
	if strings.TrimSpace(format) == "" {
		return fmt.Errorf("date format: %w", domain.ErrInvalidInput)
	}
	return m.update(ctx, func(s *domain.Settings) error {
		s.DateTimeFormat = format
		return nil
	})
}

// SetSyncOnBoot toggles the startup sync.
func (m *SettingsManager) SetSyncOnBoot(ctx context.Context, enabled bool) error {
	return m.update(ctx, func(s *domain.Settings) error {
		s.SyncOnBoot = enabled
		return nil
	})
}

// Folders lists vault folders a user may pick as highlights folder.
func (m *SettingsManager) Folders(ctx context.Context) ([]string, error) {
	folders, err := m.vault.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vault folders: %w", err)
	}
	return folders, nil
}

// update loads, mutates and saves settings in one step.
func (m *SettingsManager) update(ctx context.Context, mutate func(*domain.Settings) error) error {
	settings, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := mutate(settings); err != nil {
		return err
	}
	if err := m.store.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
