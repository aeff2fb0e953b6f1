// Command hypothesis-sync mirrors Hypothes.is annotations into a local
// markdown vault. This is the composition root: it wires adapters to
// services and hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/config/file"
	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/history/sqlite"
	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/hypothesis"
	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/vault"
	"github.com/mschrader15/hypothesis-sync/internal/adapters/driving/cli"
	"github.com/mschrader15/hypothesis-sync/internal/core/services"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("init settings store: %w", err)
	}

	historyStore, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("init history store: %w", err)
	}
	defer historyStore.Close()

	settings, err := settingsStore.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	vaultDir := settings.VaultDir
	if vaultDir == "" {
		// Until a vault is configured, write next to where the user runs us.
		vaultDir = "."
	}
	vaultStore, err := vault.NewStore(vaultDir)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	factory := hypothesis.NewFactory()

	cli.SetServices(cli.Services{
		Sync:       services.NewOrchestrator(factory, vaultStore, historyStore, settingsStore),
		Settings:   services.NewSettingsManager(settingsStore, vaultStore, factory),
		Reconciler: services.NewReconciler(factory, vaultStore, historyStore, settingsStore),
	})

	return cli.Execute(Version)
}
