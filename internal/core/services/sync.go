package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driving"
	"github.com/mschrader15/hypothesis-sync/internal/logger"
	"github.com/mschrader15/hypothesis-sync/internal/render"
)

const (
	// MaxRetries is the retry budget for transient fetch failures.
	MaxRetries = 3

	// RetryDelay is the initial backoff, doubled per attempt.
	RetryDelay = time.Second
)

// Ensure Orchestrator implements the interface.
var _ driving.SyncService = (*Orchestrator)(nil)

// Orchestrator drives one end-to-end sync pass:
// fetch -> group -> render -> reconcile -> commit.
//
// At most one pass runs at a time. History is mutated on a clone and
// persisted only in the final commit, so a failed or cancelled pass leaves
// the previous checkpoint untouched.
type Orchestrator struct {
	factory       driven.ClientFactory
	vault         driven.VaultStore
	historyStore  driven.HistoryStore
	settingsStore driven.SettingsStore

	mu      sync.Mutex
	running bool
	status  driving.SyncStatus
}

// NewOrchestrator creates a sync orchestrator.
func NewOrchestrator(
	factory driven.ClientFactory,
	vault driven.VaultStore,
	historyStore driven.HistoryStore,
	settingsStore driven.SettingsStore,
) *Orchestrator {
	return &Orchestrator{
		factory:       factory,
		vault:         vault,
		historyStore:  historyStore,
		settingsStore: settingsStore,
		status:        driving.SyncStatus{State: driving.StateIdle},
	}
}

// StartSync runs one complete pass and returns its report.
func (o *Orchestrator) StartSync(ctx context.Context) (*driving.SyncReport, error) {
	passID := uuid.NewString()
	if !o.begin(passID) {
		return nil, domain.ErrSyncInProgress
	}
	defer o.end()

	report, err := o.runPass(ctx, passID)
	if err != nil {
		o.setState(driving.StateFailed)
		return nil, err
	}
	return report, nil
}

// Status returns the state of the current or most recent pass.
func (o *Orchestrator) Status() driving.SyncStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// ResetSyncHistory clears cursor, document map and totals. It holds the
// pass slot for the duration so a pass starting mid-reset cannot commit
// over the cleared state.
func (o *Orchestrator) ResetSyncHistory(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return domain.ErrSyncInProgress
	}
	o.running = true
	o.mu.Unlock()
	defer o.end()

	if err := o.historyStore.Reset(ctx); err != nil {
		return fmt.Errorf("reset sync history: %w", err)
	}
	return nil
}

// runPass executes the pass state machine.
func (o *Orchestrator) runPass(ctx context.Context, passID string) (*driving.SyncReport, error) {
	settings, err := o.settingsStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsConnected() {
		return nil, domain.ErrNotConnected
	}
	if err := render.Validate(settings.Template); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}

	client, err := o.factory.Create(ctx, *settings)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	history, err := o.historyStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sync history: %w", err)
	}

	logger.Info("Starting sync pass %s from cursor %q", passID, history.Cursor)

	o.setState(driving.StateFetching)
	annotations, newCursor, err := o.fetchAll(ctx, client, history.Cursor)
	if err != nil {
		return nil, err
	}

	report := &driving.SyncReport{PassID: passID, Cursor: history.Cursor}
	if len(annotations) == 0 {
		// Nothing new: no writes, no commit, cursor untouched.
		logger.Info("Sync pass %s: no new annotations", passID)
		o.setState(driving.StateIdle)
		report.FinishedAt = time.Now()
		return report, nil
	}

	o.setState(driving.StateGrouping)
	groups := domain.GroupAnnotations(annotations)
	logger.Debug("Grouped %d annotation(s) into %d document(s)", len(annotations), len(groups))

	o.setState(driving.StateReconciling)
	next := history.Clone()
	renderer := render.New(settings.DateTimeFormat)
	for _, group := range groups {
		if err := o.reconcileGroup(ctx, client, renderer, settings, next, group, report); err != nil {
			return nil, err
		}
		o.bumpProcessed()
	}

	o.setState(driving.StateCommitting)
	if len(report.WriteFailures) == 0 {
		next.Cursor = newCursor
	} else {
		// A failed write means those annotations are not on disk yet.
		// Keeping the cursor re-fetches them next pass; the already
		// written documents reduce to hash-matched no-ops.
		logger.Warn("%d document write(s) failed; cursor not advanced", len(report.WriteFailures))
	}
	next.LastSync = time.Now().UTC()
	if err := o.historyStore.Commit(ctx, next); err != nil {
		return nil, fmt.Errorf("commit sync history: %w", err)
	}

	report.Cursor = next.Cursor
	report.FinishedAt = next.LastSync
	logger.Info("Sync pass %s complete: %d new, %d updated, %d highlight(s)",
		passID, report.NewDocuments, report.UpdatedDocuments, report.NewHighlights)
	o.setState(driving.StateIdle)
	return report, nil
}

// reconcileGroup handles one source document: decide create/update/skip,
// render the complete annotation set, and write.
func (o *Orchestrator) reconcileGroup(
	ctx context.Context,
	client driven.AnnotationClient,
	renderer *render.Renderer,
	settings *domain.Settings,
	next *domain.SyncHistory,
	group domain.SourceDocument,
	report *driving.SyncReport,
) error {
	entry, tracked := next.DocumentMap[group.ID]

	if tracked && entry.PendingDeletion {
		logger.Debug("Skipping %s: pending deletion decision", group.ID)
		report.SkippedPendingDeletion = append(report.SkippedPendingDeletion, group.ID)
		return nil
	}

	if tracked {
		exists, err := o.vault.Exists(ctx, entry.Path)
		if err != nil {
			return fmt.Errorf("check %s: %w", entry.Path, err)
		}
		if !exists {
			// The user may have renamed the file; the embedded
			// identifier survives that.
			if found := o.findByEmbeddedID(ctx, settings.HighlightsFolder, group.ID); found != "" {
				logger.Debug("Re-associated %s with renamed file %s", group.ID, found)
				entry.Path = found
			} else {
				// Deliberately not recreated: the user removed it.
				logger.Info("File for %q is missing; marking pending deletion", group.Title)
				entry.PendingDeletion = true
				next.DocumentMap[group.ID] = entry
				report.SkippedPendingDeletion = append(report.SkippedPendingDeletion, group.ID)
				return nil
			}
		}
	}

	// Render from the complete annotation set, not just this pass's
	// slice, so the file is always a pure function of the remote state.
	full, err := o.fetchDocument(ctx, client, group.URI)
	if err != nil {
		return err
	}
	if len(full) == 0 {
		full = group.Annotations
	}

	doc := domain.SourceDocument{
		ID:          group.ID,
		Title:       group.Title,
		URI:         group.URI,
		Annotations: full,
	}
	body, err := renderer.Render(settings.Template, doc)
	if err != nil {
		return fmt.Errorf("render %q: %w", doc.Title, err)
	}

	targetPath := entry.Path
	if !tracked {
		targetPath = o.resolvePath(ctx, settings.HighlightsFolder, doc, next)
	}

	result, err := o.vault.Write(ctx, targetPath, domain.LocalFile{
		Path:       targetPath,
		DocumentID: doc.ID,
		URI:        doc.URI,
		Body:       body,
	})
	if err != nil {
		// A local write failure aborts only this document; the pass
		// continues and the document is retried next pass.
		logger.Warn("Failed to write %s: %v", targetPath, err)
		report.WriteFailures = append(report.WriteFailures, doc.ID)
		return nil
	}

	next.DocumentMap[doc.ID] = domain.DocumentEntry{
		DocumentID:     doc.ID,
		Title:          doc.Title,
		URI:            doc.URI,
		Path:           result.Path,
		ContentHash:    result.Hash,
		HighlightCount: len(full),
		UpdatedAt:      time.Now().UTC(),
	}

	if !tracked {
		report.NewDocuments++
		next.Totals.Documents++
	} else if result.Written {
		report.UpdatedDocuments++
	}
	// Unchanged files still count as synced: the annotations are
	// reflected locally even though no bytes moved.
	report.NewHighlights += len(group.Annotations)
	next.Totals.Highlights += len(group.Annotations)
	return nil
}

// fetchAll pages through the remote service from cursor, retrying
// transient failures with bounded backoff.
func (o *Orchestrator) fetchAll(
	ctx context.Context,
	client driven.AnnotationClient,
	cursor string,
) ([]domain.Annotation, string, error) {
	var all []domain.Annotation
	newCursor := cursor
	pageToken := ""

	for {
		var page *driven.AnnotationPage
		err := o.withRetry(ctx, func() error {
			var fetchErr error
			page, fetchErr = client.FetchSince(ctx, cursor, pageToken)
			return fetchErr
		})
		if err != nil {
			return nil, "", fmt.Errorf("fetch annotations: %w", err)
		}

		all = append(all, page.Annotations...)
		if page.Cursor != "" {
			newCursor = page.Cursor
		}
		if page.NextPageToken == "" {
			return all, newCursor, nil
		}
		pageToken = page.NextPageToken
	}
}

// fetchDocument retrieves the full annotation set for one URI with the
// same retry policy as page fetches.
func (o *Orchestrator) fetchDocument(
	ctx context.Context,
	client driven.AnnotationClient,
	uri string,
) ([]domain.Annotation, error) {
	var anns []domain.Annotation
	err := o.withRetry(ctx, func() error {
		var fetchErr error
		anns, fetchErr = client.FetchDocument(ctx, uri)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", uri, err)
	}
	return anns, nil
}

// withRetry runs op, retrying transient failures up to MaxRetries with
// doubling backoff. Auth failures and cancellation are never retried.
func (o *Orchestrator) withRetry(ctx context.Context, op func() error) error {
	delay := RetryDelay
	var err error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTransient) {
			return err
		}
		if attempt == MaxRetries {
			break
		}
		logger.Debug("Transient failure (attempt %d/%d): %v", attempt, MaxRetries, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// resolvePath derives a collision-free vault path for a new document.
func (o *Orchestrator) resolvePath(
	ctx context.Context,
	folder string,
	doc domain.SourceDocument,
	next *domain.SyncHistory,
) string {
	candidate := path.Join(folder, o.vault.FileName(doc.Title))
	if !o.pathInUse(ctx, candidate, doc.ID, next) {
		return candidate
	}

	// Two documents share a title: disambiguate with the source ID.
	short := doc.ID
	if len(short) > 8 {
		short = short[:8]
	}
	base := strings.TrimSuffix(candidate, ".md")
	return fmt.Sprintf("%s (%s).md", base, short)
}

// pathInUse reports whether candidate belongs to another document, either
// in the map or on disk with a different embedded identifier.
func (o *Orchestrator) pathInUse(ctx context.Context, candidate, docID string, next *domain.SyncHistory) bool {
	if next.PathTaken(candidate, docID) {
		return true
	}
	file, err := o.vault.Read(ctx, candidate)
	if err != nil {
		return false
	}
	return file.DocumentID != "" && file.DocumentID != docID
}

// findByEmbeddedID scans the highlights folder for a file whose front
// matter carries docID.
func (o *Orchestrator) findByEmbeddedID(ctx context.Context, folder, docID string) string {
	files, err := o.vault.List(ctx, folder)
	if err != nil {
		logger.Debug("Scan for renamed files failed: %v", err)
		return ""
	}
	for _, f := range files {
		if f.DocumentID == docID {
			return f.Path
		}
	}
	return ""
}

// begin claims the single in-flight pass slot.
func (o *Orchestrator) begin(passID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	o.status = driving.SyncStatus{PassID: passID, State: driving.StateIdle}
	return true
}

// end releases the pass slot.
func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
}

func (o *Orchestrator) setState(state driving.SyncState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.State = state
}

func (o *Orchestrator) bumpProcessed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.DocumentsProcessed++
}
