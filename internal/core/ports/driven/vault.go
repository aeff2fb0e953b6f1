package driven

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// VaultStore abstracts the local file system the highlight files live in.
// Paths are relative to the vault root; implementations must reject paths
// escaping it.
type VaultStore interface {
	// FileName derives a sanitized file name (with extension) from a
	// document title. Collision disambiguation is the caller's concern.
	FileName(title string) string

	// Write stores the file atomically, creating parent folders as needed.
	// Writing content identical to what is already on disk is a no-op:
	// the result carries Written=false and the existing hash.
	Write(ctx context.Context, path string, file domain.LocalFile) (*domain.WriteResult, error)

	// Read returns the file at path with parsed front matter, or
	// domain.ErrNotFound.
	Read(ctx context.Context, path string) (*domain.LocalFile, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns every highlight file under folder with its embedded
	// document identifier where present.
	List(ctx context.Context, folder string) ([]domain.LocalFile, error)

	// Rename moves a file within the vault.
	Rename(ctx context.Context, oldPath, newPath string) error

	// Delete removes a file.
	Delete(ctx context.Context, path string) error

	// Folders lists the vault's folders, for settings UIs choosing a
	// highlights folder.
	Folders(ctx context.Context) ([]string, error)
}
