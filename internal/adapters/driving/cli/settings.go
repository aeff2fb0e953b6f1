package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage sync settings",
	Long: `View and configure the connection, the vault location, the highlights
template and the sync behaviour.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Store and validate an API token",
	Long: `Prompts for a Hypothes.is API token, validates it against the service
and stores it together with your account identifier.`,
	RunE: runSettingsConnect,
}

var settingsDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Invalidate the stored API token",
	Long:  `Removes the stored token. Sync history is kept for a later reconnect.`,
	RunE:  runSettingsDisconnect,
}

var settingsTemplateCmd = &cobra.Command{
	Use:   "template [file]",
	Short: "Set the highlights template",
	Long: `Sets the template used to render highlight files. Reads the template
from the given file, or from stdin when no file is provided. The
template is validated before it is stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsTemplate,
}

var settingsFolderCmd = &cobra.Command{
	Use:   "folder <path>",
	Short: "Set the vault folder highlight files are written to",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsFolder,
}

var settingsFoldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List folders in the vault",
	RunE:  runSettingsFolders,
}

var settingsVaultCmd = &cobra.Command{
	Use:   "vault <dir>",
	Short: "Set the vault root directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsVault,
}

var settingsDateTimeCmd = &cobra.Command{
	Use:   "datetime <format>",
	Short: "Set the date format used in rendered highlights",
	Long: `Sets the date format for the {{created}} and {{updated}} tokens,
using moment-style placeholders, e.g. "YYYY-MM-DD HH:mm:ss".`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsDateTime,
}

var settingsSyncOnBootCmd = &cobra.Command{
	Use:   "sync-on-boot (on|off)",
	Short: "Toggle the startup sync",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSyncOnBoot,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsConnectCmd)
	settingsCmd.AddCommand(settingsDisconnectCmd)
	settingsCmd.AddCommand(settingsTemplateCmd)
	settingsCmd.AddCommand(settingsFolderCmd)
	settingsCmd.AddCommand(settingsFoldersCmd)
	settingsCmd.AddCommand(settingsVaultCmd)
	settingsCmd.AddCommand(settingsDateTimeCmd)
	settingsCmd.AddCommand(settingsSyncOnBootCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Connection]")
	if settings.IsConnected() {
		cmd.Printf("  Status: connected as %s\n", settings.Username())
		cmd.Printf("  API Token: %s\n", maskToken(settings.APIToken))
	} else {
		cmd.Println("  Status: not connected")
	}
	cmd.Println()

	cmd.Println("[Vault]")
	cmd.Printf("  Directory: %s\n", orUnset(settings.VaultDir))
	folder := settings.HighlightsFolder
	if folder == "" {
		folder = "(vault root)"
	}
	cmd.Printf("  Highlights Folder: %s\n", folder)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Sync On Boot: %s\n", onOff(settings.SyncOnBoot))
	cmd.Printf("  Date Format: %s\n", settings.DateTimeFormat)
	cmd.Println()

	cmd.Println("[Template]")
	for _, line := range strings.Split(settings.Template, "\n") {
		cmd.Printf("  %s\n", line)
	}
	return nil
}

func runSettingsConnect(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Enter API token: ")
	token := readPassword()
	cmd.Println()
	if token == "" {
		return errors.New("API token is required")
	}

	cmd.Print("Validating token... ")
	settings, err := settingsService.Connect(context.Background(), token)
	if err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("connect failed: %w", err)
	}
	cmd.Println("OK")
	cmd.Printf("Connected as %s.\n", settings.Username())
	return nil
}

func runSettingsDisconnect(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}
	cmd.Println("Disconnected. Sync history was kept.")
	return nil
}

func runSettingsTemplate(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var (
		raw []byte
		err error
	)
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
	}

	if err := settingsService.SetTemplate(context.Background(), string(raw)); err != nil {
		return fmt.Errorf("set template: %w", err)
	}
	cmd.Println("Template updated.")
	return nil
}

func runSettingsFolder(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetHighlightsFolder(context.Background(), args[0]); err != nil {
		return fmt.Errorf("set highlights folder: %w", err)
	}
	cmd.Printf("Highlights folder set to %q.\n", args[0])
	return nil
}

func runSettingsFolders(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	folders, err := settingsService.Folders(context.Background())
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}
	for _, f := range folders {
		cmd.Println(f)
	}
	return nil
}

func runSettingsVault(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetVaultDir(context.Background(), args[0]); err != nil {
		return fmt.Errorf("set vault dir: %w", err)
	}
	cmd.Printf("Vault directory set to %q. Takes effect on the next run.\n", args[0])
	return nil
}

func runSettingsDateTime(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetDateTimeFormat(context.Background(), args[0]); err != nil {
		return fmt.Errorf("set date format: %w", err)
	}
	cmd.Printf("Date format set to %q.\n", args[0])
	return nil
}

func runSettingsSyncOnBoot(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		enabled = true
	case "off", "false", "no":
		enabled = false
	default:
		return fmt.Errorf("unknown value %q (want on or off)", args[0])
	}

	if err := settingsService.SetSyncOnBoot(context.Background(), enabled); err != nil {
		return fmt.Errorf("set sync-on-boot: %w", err)
	}
	cmd.Printf("Sync on boot %s.\n", onOff(enabled))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo first
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
