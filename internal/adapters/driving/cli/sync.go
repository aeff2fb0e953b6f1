package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass",
	Long: `Fetches annotations updated since the last pass, renders them into
markdown files and commits the new checkpoint.`,
	RunE: runSync,
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear sync history",
	Long: `Clears the cursor, the document map and the counters. The next pass
re-fetches everything; unchanged files are left untouched.`,
	RunE: runSyncReset,
}

func init() {
	syncCmd.AddCommand(syncResetCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	return runSyncPass(context.Background(), cmd)
}

// runSyncPass runs one pass and prints its report. Shared with the bare
// invocation's startup sync.
func runSyncPass(ctx context.Context, cmd *cobra.Command) error {
	cmd.Println("Syncing...")

	report, err := syncService.StartSync(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotConnected):
			return errors.New("not connected; run 'hypothesis-sync settings connect' first")
		case errors.Is(err, domain.ErrAuthFailed):
			return errors.New("authentication failed; reconnect with a fresh API token")
		case errors.Is(err, domain.ErrSyncInProgress):
			return errors.New("a sync pass is already running")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Synced %d highlight(s): %d new document(s), %d updated.\n",
		report.NewHighlights, report.NewDocuments, report.UpdatedDocuments)
	if n := len(report.SkippedPendingDeletion); n > 0 {
		cmd.Printf("%d document(s) skipped pending a deletion decision; run 'hypothesis-sync deleted list'.\n", n)
	}
	if n := len(report.WriteFailures); n > 0 {
		cmd.Printf("%d document(s) failed to write and will be retried next pass.\n", n)
	}
	return nil
}

func runSyncReset(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	if err := syncService.ResetSyncHistory(context.Background()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Println("Sync history cleared. The next pass will re-fetch all annotations.")
	return nil
}
