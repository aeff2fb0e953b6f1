package memory

import (
	"context"
	"sync"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is an in-memory implementation of driven.SettingsStore.
type SettingsStore struct {
	mu       sync.RWMutex
	settings domain.Settings
}

// NewSettingsStore creates an in-memory settings store.
func NewSettingsStore(settings domain.Settings) *SettingsStore {
	return &SettingsStore{settings: settings.WithDefaults()}
}

// Load returns a copy of the current settings.
func (s *SettingsStore) Load(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := s.settings
	return &settings, nil
}

// Save replaces the stored settings.
func (s *SettingsStore) Save(_ context.Context, settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = *settings
	return nil
}
