package driving

import (
	"context"
	"time"
)

// SyncState names the orchestrator's position in a pass.
type SyncState string

// Pass states. Failed always returns control to Idle without mutating
// history.
const (
	StateIdle        SyncState = "idle"
	StateFetching    SyncState = "fetching"
	StateGrouping    SyncState = "grouping"
	StateReconciling SyncState = "reconciling"
	StateCommitting  SyncState = "committing"
	StateFailed      SyncState = "failed"
)

// SyncService runs sync passes. At most one pass is in flight; a caller
// requesting a pass while one runs receives domain.ErrSyncInProgress.
type SyncService interface {
	// StartSync runs one complete pass and returns its report.
	StartSync(ctx context.Context) (*SyncReport, error)

	// Status returns the state of the current or most recent pass.
	Status() SyncStatus

	// ResetSyncHistory clears cursor, document map and totals.
	// It fails with domain.ErrSyncInProgress while a pass runs.
	ResetSyncHistory(ctx context.Context) error
}

// SyncStatus is a point-in-time view of the orchestrator.
type SyncStatus struct {
	// PassID identifies the pass being reported on.
	PassID string

	// State is the current pass state.
	State SyncState

	// DocumentsProcessed counts document groups handled so far.
	DocumentsProcessed int
}

// SyncReport summarises one committed pass.
type SyncReport struct {
	// PassID identifies the pass.
	PassID string

	// NewHighlights is the number of annotations reflected in files by
	// this pass.
	NewHighlights int

	// NewDocuments is the number of files created for the first time.
	NewDocuments int

	// UpdatedDocuments is the number of existing files rewritten.
	UpdatedDocuments int

	// SkippedPendingDeletion lists document IDs left untouched because
	// their files are awaiting a deletion decision.
	SkippedPendingDeletion []string

	// WriteFailures lists document IDs whose writes failed; they are
	// retried next pass because the cursor did not advance past them.
	WriteFailures []string

	// Cursor is the committed cursor after the pass.
	Cursor string

	// FinishedAt is when the pass committed.
	FinishedAt time.Time
}
