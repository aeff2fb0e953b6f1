package driving

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// SettingsService is the actions interface the settings collaborator
// invokes. The engine owns validation; the collaborator owns rendering.
type SettingsService interface {
	// Get retrieves current settings with defaults applied.
	Get(ctx context.Context) (*domain.Settings, error)

	// Connect validates the API token against the remote service, then
	// stores it together with the resolved account identifier.
	Connect(ctx context.Context, apiToken string) (*domain.Settings, error)

	// Disconnect invalidates the stored token. Sync history is kept.
	Disconnect(ctx context.Context) error

	// SetTemplate validates and stores the highlights template.
	// Invalid templates are rejected with a render.SyntaxError and never
	// reach a sync pass.
	SetTemplate(ctx context.Context, template string) error

	// SetHighlightsFolder stores the vault-relative target folder.
	SetHighlightsFolder(ctx context.Context, folder string) error

	// SetVaultDir stores the vault root directory. Takes effect on the
	// next invocation.
	SetVaultDir(ctx context.Context, dir string) error

	// SetDateTimeFormat stores the moment-style date layout.
	SetDateTimeFormat(ctx context.Context, format string) error

	// SetSyncOnBoot toggles the startup sync.
	SetSyncOnBoot(ctx context.Context, enabled bool) error

	// Folders lists vault folders a user may pick as highlights folder.
	Folders(ctx context.Context) ([]string, error)
}
