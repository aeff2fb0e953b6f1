// Package vault implements the VaultStore port on the local file system.
//
// Highlight files are markdown with a small YAML front matter block carrying
// the source-document identifier, so a file stays associated with its
// documentMap entry even after the user renames it. Writes are atomic
// (tmp file + rename) and idempotent: writing content identical to what is
// on disk is a no-op.
package vault
