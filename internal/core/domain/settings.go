package domain

import "strings"

// DefaultDateTimeFormat is the moment-style layout used when none is set.
const DefaultDateTimeFormat = "YYYY-MM-DD HH:mm:ss"

// DefaultTemplate is the initial highlights template.
const DefaultTemplate = `## {{title}}

[{{title}}]({{uri}})

{{#highlights}}
> {{text}}

{{note}}

{{tags}}
Created: {{created}}

{{/highlights}}`

// Settings is the engine's configuration. The core reads it at pass start
// and never mutates it; persistence belongs to the settings collaborator.
type Settings struct {
	// APIToken authenticates against the annotation service.
	APIToken string

	// UserID is the remote account identifier (e.g. "acct:jo@hypothes.is"),
	// recorded when the token is validated.
	UserID string

	// VaultDir is the root directory of the local document store.
	VaultDir string

	// HighlightsFolder is the vault-relative folder highlight files are
	// written to.
	HighlightsFolder string

	// Template is the highlights template string.
	Template string

	// DateTimeFormat is the moment-style layout for rendered dates.
	DateTimeFormat string

	// SyncOnBoot runs a sync pass on startup when connected.
	SyncOnBoot bool
}

// IsConnected reports whether an API token is configured.
func (s *Settings) IsConnected() bool {
	return s.APIToken != ""
}

// WithDefaults fills unset fields that have sensible defaults.
func (s Settings) WithDefaults() Settings {
	if s.Template == "" {
		s.Template = DefaultTemplate
	}
	if s.DateTimeFormat == "" {
		s.DateTimeFormat = DefaultDateTimeFormat
	}
	return s
}

// Username extracts the bare account name from the user ID.
// "acct:jo@hypothes.is" becomes "jo". Unknown shapes pass through verbatim.
func (s *Settings) Username() string {
	id := s.UserID
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.IndexByte(id, '@'); i >= 0 {
		id = id[:i]
	}
	return id
}
