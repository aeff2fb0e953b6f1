package domain

// LocalFile is a file in the vault's highlights folder.
type LocalFile struct {
	// Path is the vault-relative path.
	Path string

	// DocumentID is the embedded source document identifier, parsed from
	// front matter. Empty when the file carries none. The identifier lets a
	// file stay associated with its documentMap entry across user renames.
	DocumentID string

	// URI is the embedded source document location, if present.
	URI string

	// Body is the file content below the front matter.
	Body string

	// Hash is the content hash of the whole file as stored on disk.
	Hash string
}

// WriteResult reports the outcome of a vault write.
type WriteResult struct {
	// Path is the committed vault-relative path.
	Path string

	// Hash is the content hash of the file as written (or as found, when
	// the write was skipped).
	Hash string

	// Written is false when the on-disk content already matched and the
	// write was skipped.
	Written bool
}
