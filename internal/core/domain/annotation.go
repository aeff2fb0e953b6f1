package domain

import (
	"sort"
	"time"
)

// Annotation is one highlight fetched from the annotation service.
// It is immutable once fetched and lives only for the duration of a pass.
type Annotation struct {
	// ID is the stable remote identifier.
	ID string

	// DocumentID identifies the source document the annotation belongs to.
	DocumentID string

	// DocumentTitle is the human-readable title of the source document.
	DocumentTitle string

	// URI is the location of the source document.
	URI string

	// Text is the highlighted excerpt. May be empty for page notes.
	Text string

	// Note is the user's comment on the highlight, if any.
	Note string

	// Tags are the user-assigned tags.
	Tags []string

	// Link is a permalink to the annotation in context.
	Link string

	// Owner is the remote account that created the annotation.
	Owner string

	// Created is when the annotation was created.
	Created time.Time

	// Updated is when the annotation was last modified. Drives the cursor.
	Updated time.Time
}

// SourceDocument is the per-pass grouping of annotations that share a source.
// It is derived, never persisted; the orchestrator rebuilds it each pass.
type SourceDocument struct {
	// ID identifies the document across passes (derived from the URI).
	ID string

	// Title is the document title.
	Title string

	// URI is the document location.
	URI string

	// Annotations is the ordered set belonging to this document.
	Annotations []Annotation
}

// SortAnnotations orders annotations by creation time, with the remote ID as
// a stable tie-break. The same input always yields the same order regardless
// of fetch page boundaries.
func SortAnnotations(anns []Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		if !anns[i].Created.Equal(anns[j].Created) {
			return anns[i].Created.Before(anns[j].Created)
		}
		return anns[i].ID < anns[j].ID
	})
}

// GroupAnnotations partitions annotations by source document. Groups are
// returned sorted by document ID and each group's annotations are ordered
// deterministically via SortAnnotations.
func GroupAnnotations(anns []Annotation) []SourceDocument {
	byDoc := make(map[string]*SourceDocument)
	for _, a := range anns {
		doc, ok := byDoc[a.DocumentID]
		if !ok {
			doc = &SourceDocument{
				ID:    a.DocumentID,
				Title: a.DocumentTitle,
				URI:   a.URI,
			}
			byDoc[a.DocumentID] = doc
		}
		if doc.Title == "" {
			doc.Title = a.DocumentTitle
		}
		doc.Annotations = append(doc.Annotations, a)
	}

	docs := make([]SourceDocument, 0, len(byDoc))
	for _, doc := range byDoc {
		SortAnnotations(doc.Annotations)
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// LatestUpdate returns the most recent Updated timestamp across annotations,
// or the zero time when the slice is empty.
func LatestUpdate(anns []Annotation) time.Time {
	var latest time.Time
	for _, a := range anns {
		if a.Updated.After(latest) {
			latest = a.Updated
		}
	}
	return latest
}
