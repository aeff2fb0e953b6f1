package domain

import "time"

// DocumentEntry records the local file a source document was rendered to.
// Entries exist only for documents with at least one successfully written
// highlight.
type DocumentEntry struct {
	// DocumentID identifies the source document.
	DocumentID string

	// Title is the document title at last write.
	Title string

	// URI is the document location.
	URI string

	// Path is the vault-relative path of the rendered file.
	Path string

	// ContentHash is the hash of the last rendered file content.
	// Used to detect drift and to skip unchanged writes.
	ContentHash string

	// HighlightCount is the number of annotations in the last render.
	HighlightCount int

	// PendingDeletion marks a tracked file that vanished locally and awaits
	// an explicit user decision. Automatic passes never recreate it.
	PendingDeletion bool

	// UpdatedAt is when this entry was last committed.
	UpdatedAt time.Time
}

// SyncTotals are the cumulative counters shown to the user.
type SyncTotals struct {
	// Documents is the number of source documents ever synced.
	Documents int

	// Highlights is the number of highlights ever synced.
	Highlights int
}

// SyncHistory is the only cross-run state the engine owns. It is mutated
// exclusively at pass-commit time, as one atomic update.
type SyncHistory struct {
	// Cursor is the timestamp watermark of the latest successfully
	// processed annotation update, in the remote service's format.
	// It only advances after a fully committed pass.
	Cursor string

	// LastSync is when the last successful pass committed.
	LastSync time.Time

	// DocumentMap associates source document IDs with local files.
	DocumentMap map[string]DocumentEntry

	// Totals are the cumulative counters.
	Totals SyncTotals
}

// NewSyncHistory returns an empty history, as before the first sync.
func NewSyncHistory() *SyncHistory {
	return &SyncHistory{DocumentMap: make(map[string]DocumentEntry)}
}

// Clone returns a deep copy. The orchestrator mutates a clone during a pass
// so a failed pass leaves the loaded history untouched.
func (h *SyncHistory) Clone() *SyncHistory {
	c := &SyncHistory{
		Cursor:      h.Cursor,
		LastSync:    h.LastSync,
		Totals:      h.Totals,
		DocumentMap: make(map[string]DocumentEntry, len(h.DocumentMap)),
	}
	for id, e := range h.DocumentMap {
		c.DocumentMap[id] = e
	}
	return c
}

// PathTaken reports whether any entry other than docID already maps to path.
func (h *SyncHistory) PathTaken(path, docID string) bool {
	for id, e := range h.DocumentMap {
		if id != docID && e.Path == path {
			return true
		}
	}
	return false
}
