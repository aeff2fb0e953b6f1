package driven

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// SettingsStore persists engine settings. The core reads settings at pass
// start; writes happen only through the settings service actions.
type SettingsStore interface {
	// Load returns the current settings, with defaults applied.
	Load(ctx context.Context) (*domain.Settings, error)

	// Save persists the settings.
	Save(ctx context.Context, settings *domain.Settings) error
}
