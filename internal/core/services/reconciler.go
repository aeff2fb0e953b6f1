package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
	"github.com/mschrader15/hypothesis-sync/internal/logger"
	"github.com/mschrader15/hypothesis-sync/internal/render"
)

// Ensure Reconciler implements the interface.
var _ driving.DeletedFileReconciler = (*Reconciler)(nil)

// Reconciler resolves tracked files that vanished from the vault.
// Recreating a file the user deleted is never automatic; every
// resurrection goes through an explicit Resolve call.
type Reconciler struct {
	factory       driven.ClientFactory
	vault         driven.VaultStore
	historyStore  driven.HistoryStore
	settingsStore driven.SettingsStore
}

// NewReconciler creates a deleted-file reconciler.
func NewReconciler(
	factory driven.ClientFactory,
	vault driven.VaultStore,
	historyStore driven.HistoryStore,
	settingsStore driven.SettingsStore,
) *Reconciler {
	return &Reconciler{
		factory:       factory,
		vault:         vault,
		historyStore:  historyStore,
		settingsStore: settingsStore,
	}
}

// ListMissing returns every tracked document whose file is gone, sorted by
// title for stable display.
func (r *Reconciler) ListMissing(ctx context.Context) ([]domain.DocumentEntry, error) {
	history, err := r.historyStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sync history: %w", err)
	}

	var missing []domain.DocumentEntry
	for _, entry := range history.DocumentMap {
		if entry.PendingDeletion {
			missing = append(missing, entry)
			continue
		}
		exists, err := r.vault.Exists(ctx, entry.Path)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", entry.Path, err)
		}
		if !exists {
			missing = append(missing, entry)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Title != missing[j].Title {
			return missing[i].Title < missing[j].Title
		}
		return missing[i].DocumentID < missing[j].DocumentID
	})
	return missing, nil
}

// Resolve applies the user's decision for one missing document.
func (r *Reconciler) Resolve(ctx context.Context, documentID string, decision driving.DeletionDecision) error {
	history, err := r.historyStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sync history: %w", err)
	}
	entry, ok := history.DocumentMap[documentID]
	if !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	next := history.Clone()
	switch decision {
	case driving.DecisionKeepDeleted:
		// Forget the document. Totals stay as they are; they count what
		// was ever synced, not what is currently on disk.
		delete(next.DocumentMap, documentID)
		logger.Info("Forgot %q; it will not be recreated", entry.Title)

	case driving.DecisionResync:
		if err := r.resync(ctx, next, entry); err != nil {
			return err
		}

	default:
		return fmt.Errorf("decision %q: %w", decision, domain.ErrInvalidInput)
	}

	if err := r.historyStore.Commit(ctx, next); err != nil {
		return fmt.Errorf("commit sync history: %w", err)
	}
	return nil
}

// resync re-fetches the document's full annotation set and rewrites the
// file at its recorded path.
func (r *Reconciler) resync(ctx context.Context, next *domain.SyncHistory, entry domain.DocumentEntry) error {
	settings, err := r.settingsStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsConnected() {
		return domain.ErrNotConnected
	}

	client, err := r.factory.Create(ctx, *settings)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	annotations, err := client.FetchDocument(ctx, entry.URI)
	if err != nil {
		return fmt.Errorf("fetch document %s: %w", entry.URI, err)
	}

	doc := domain.SourceDocument{
		ID:          entry.DocumentID,
		Title:       entry.Title,
		URI:         entry.URI,
		Annotations: annotations,
	}
	body, err := render.New(settings.DateTimeFormat).Render(settings.Template, doc)
	if err != nil {
		return fmt.Errorf("render %q: %w", entry.Title, err)
	}

	result, err := r.vault.Write(ctx, entry.Path, domain.LocalFile{
		Path:       entry.Path,
		DocumentID: entry.DocumentID,
		URI:        entry.URI,
		Body:       body,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", entry.Path, err)
	}

	entry.Path = result.Path
	entry.ContentHash = result.Hash
	entry.HighlightCount = len(annotations)
	entry.PendingDeletion = false
	entry.UpdatedAt = time.Now().UTC()
	next.DocumentMap[entry.DocumentID] = entry
	logger.Info("Recreated %q with %d highlight(s)", entry.Title, len(annotations))
	return nil
}
