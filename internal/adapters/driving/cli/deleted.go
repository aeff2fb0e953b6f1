package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
)

var deletedCmd = &cobra.Command{
	Use:   "deleted",
	Short: "Resolve locally deleted highlight files",
	Long: `Tracked files that were deleted from the vault are never recreated
automatically. List them and decide per document whether to resync or
keep them deleted.`,
	RunE: runDeletedList,
}

var deletedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files missing from the vault",
	RunE:  runDeletedList,
}

var deletedResolveCmd = &cobra.Command{
	Use:   "resolve <document-id> (resync|keep-deleted)",
	Short: "Apply a decision for one missing document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDeletedResolve,
}

func init() {
	deletedCmd.AddCommand(deletedListCmd)
	deletedCmd.AddCommand(deletedResolveCmd)
	rootCmd.AddCommand(deletedCmd)
}

func runDeletedList(cmd *cobra.Command, _ []string) error {
	if reconciler == nil {
		return errors.New("reconciler not configured")
	}

	missing, err := reconciler.ListMissing(context.Background())
	if err != nil {
		return fmt.Errorf("list missing files: %w", err)
	}
	if len(missing) == 0 {
		cmd.Println("No deleted highlight files.")
		return nil
	}

	cmd.Printf("%d highlight file(s) deleted from the vault:\n\n", len(missing))
	for _, entry := range missing {
		cmd.Printf("  %s  %q (%d highlight(s), was %s)\n",
			entry.DocumentID, entry.Title, entry.HighlightCount, entry.Path)
	}
	cmd.Println("\nResolve with 'hypothesis-sync deleted resolve <document-id> resync|keep-deleted'.")
	return nil
}

func runDeletedResolve(cmd *cobra.Command, args []string) error {
	if reconciler == nil {
		return errors.New("reconciler not configured")
	}

	documentID := args[0]
	decision := driving.DeletionDecision(args[1])
	if decision != driving.DecisionResync && decision != driving.DecisionKeepDeleted {
		return fmt.Errorf("unknown decision %q (want resync or keep-deleted)", args[1])
	}

	if err := reconciler.Resolve(context.Background(), documentID, decision); err != nil {
		return fmt.Errorf("resolve %s: %w", documentID, err)
	}

	if decision == driving.DecisionResync {
		cmd.Printf("Recreated document %s.\n", documentID)
	} else {
		cmd.Printf("Document %s will stay deleted.\n", documentID)
	}
	return nil
}
