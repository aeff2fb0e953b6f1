package driven

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// HistoryStore persists sync history across runs.
type HistoryStore interface {
	// Load returns the current history. A store that has never committed
	// returns an empty history, not an error.
	Load(ctx context.Context) (*domain.SyncHistory, error)

	// Commit replaces the persisted history in one atomic update.
	// A crash mid-commit must leave the previous history intact.
	Commit(ctx context.Context, history *domain.SyncHistory) error

	// Reset clears cursor, document map and totals, forcing a full
	// re-fetch and re-render on the next pass.
	Reset(ctx context.Context) error
}
