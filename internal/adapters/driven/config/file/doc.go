// Package file implements the SettingsStore port as a TOML file in the
// hypothesis-sync config directory. The file is written with restricted
// permissions because it carries the API token.
package file
