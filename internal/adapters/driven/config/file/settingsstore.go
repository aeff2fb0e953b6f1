package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// settingsFile is the on-disk TOML shape.
type settingsFile struct {
	APIToken         string `toml:"api_token"`
	UserID           string `toml:"user_id"`
	VaultDir         string `toml:"vault_dir"`
	HighlightsFolder string `toml:"highlights_folder"`
	Template         string `toml:"template,multiline"`
	DateTimeFormat   string `toml:"date_time_format"`
	SyncOnBoot       bool   `toml:"sync_on_boot"`
}

// SettingsStore is a TOML-file implementation of driven.SettingsStore.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSettingsStore creates a settings store under configDir.
// If configDir is empty, defaults to ~/.hypothesis-sync/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".hypothesis-sync")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	return &SettingsStore{filePath: filepath.Join(configDir, "config.toml")}, nil
}

// Load reads the settings file. A missing file yields defaults.
func (s *SettingsStore) Load(_ context.Context) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			settings := domain.Settings{}.WithDefaults()
			return &settings, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var f settingsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	settings := domain.Settings{
		APIToken:         f.APIToken,
		UserID:           f.UserID,
		VaultDir:         f.VaultDir,
		HighlightsFolder: f.HighlightsFolder,
		Template:         f.Template,
		DateTimeFormat:   f.DateTimeFormat,
		SyncOnBoot:       f.SyncOnBoot,
	}.WithDefaults()
	return &settings, nil
}

// Save persists the settings with restricted permissions.
func (s *SettingsStore) Save(_ context.Context, settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := settingsFile{
		APIToken:         settings.APIToken,
		UserID:           settings.UserID,
		VaultDir:         settings.VaultDir,
		HighlightsFolder: settings.HighlightsFolder,
		Template:         settings.Template,
		DateTimeFormat:   settings.DateTimeFormat,
		SyncOnBoot:       settings.SyncOnBoot,
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
