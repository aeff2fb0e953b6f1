package driving

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// DeletionDecision is the user's choice for a missing tracked file.
type DeletionDecision string

const (
	// DecisionResync recreates the file from the remote annotation set.
	DecisionResync DeletionDecision = "resync"

	// DecisionKeepDeleted forgets the document permanently; automatic
	// passes will never recreate it.
	DecisionKeepDeleted DeletionDecision = "keep-deleted"
)

// DeletedFileReconciler resolves tracked files that vanished locally.
// Recreation is explicitly user-gated: silently restoring a note the user
// removed is treated as a correctness violation, not a sync gap.
type DeletedFileReconciler interface {
	// ListMissing returns documentMap entries whose file is gone from the
	// vault (including those already marked pending-deletion).
	ListMissing(ctx context.Context) ([]domain.DocumentEntry, error)

	// Resolve applies the user's decision for one document.
	Resolve(ctx context.Context, documentID string, decision DeletionDecision) error
}
