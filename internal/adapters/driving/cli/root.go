// Package cli is the command-line driving adapter. Commands talk to the
// core exclusively through the driving ports; services are injected once
// at startup via SetServices.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
	"github.com/mschrader15/hypothesis-sync/internal/logger"
)

// version is set from the build via Execute.
var version = "dev"

// Injected services. Package-level so tests can swap in mocks.
var (
	syncService     driving.SyncService
	settingsService driving.SettingsService
	reconciler      driving.DeletedFileReconciler
)

// Services bundles the driving ports the CLI needs.
type Services struct {
	Sync       driving.SyncService
	Settings   driving.SettingsService
	Reconciler driving.DeletedFileReconciler
}

// SetServices injects the core services. Must be called before Execute.
func SetServices(s Services) {
	syncService = s.Sync
	settingsService = s.Settings
	reconciler = s.Reconciler
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hypothesis-sync",
	Short: "Sync Hypothes.is annotations into a local markdown vault",
	Long: `hypothesis-sync mirrors your Hypothes.is highlights and notes into
markdown files, one file per annotated document.

Run without arguments to perform the startup sync (when enabled and
connected), or use the subcommands for explicit control.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

// runRoot implements the bare invocation: a sync pass runs only when the
// startup sync is enabled and a token is configured.
func runRoot(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || syncService == nil {
		return errors.New("services not configured")
	}

	ctx := context.Background()
	settings, err := settingsService.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.IsConnected() {
		cmd.Println("Not connected. Run 'hypothesis-sync settings connect' to get started.")
		return nil
	}
	if !settings.SyncOnBoot {
		return cmd.Help()
	}

	return runSyncPass(ctx, cmd)
}
