package driven

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// AnnotationPage is one page of a cursor-bounded fetch.
type AnnotationPage struct {
	// Annotations are the page's records, ordered by update time then ID.
	Annotations []domain.Annotation

	// NextPageToken resumes the fetch. Empty when the page is the last.
	NextPageToken string

	// Cursor is the watermark after this page, in the remote service's
	// native format. Opaque to the core; committed to history verbatim.
	Cursor string
}

// ClientFactory builds an AnnotationClient from settings. The token can
// change between passes, so the orchestrator creates a fresh client per
// pass rather than holding one.
type ClientFactory interface {
	// Create returns a client authenticated with the settings' API token.
	Create(ctx context.Context, settings domain.Settings) (AnnotationClient, error)
}

// AnnotationClient queries the remote annotation service.
//
// Implementations classify failures: 401-class responses yield
// domain.ErrAuthFailed, network and 5xx failures yield domain.ErrTransient.
// Retrying is the orchestrator's job, not the client's.
type AnnotationClient interface {
	// Profile validates the configured token and returns the account
	// identifier (e.g. "acct:jo@hypothes.is").
	Profile(ctx context.Context) (string, error)

	// FetchSince returns annotations updated strictly after cursor, one
	// page at a time. An empty cursor means fetch everything. Ordering is
	// stable (update time, then remote ID) so a page boundary split
	// mid-timestamp never drops or duplicates a record across retries.
	FetchSince(ctx context.Context, cursor, pageToken string) (*AnnotationPage, error)

	// FetchDocument returns the complete annotation set for one source
	// document, used when re-rendering a whole file.
	FetchDocument(ctx context.Context, uri string) ([]domain.Annotation, error)
}
