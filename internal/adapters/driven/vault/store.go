package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// maxNameLen caps derived file names to stay within file system limits.
const maxNameLen = 120

// Ensure Store implements the interface.
var _ driven.VaultStore = (*Store)(nil)

// Store is a file-system implementation of driven.VaultStore.
type Store struct {
	root string // absolute path to the vault directory
}

// NewStore creates a vault store rooted at the given directory,
// creating it if necessary.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create vault root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute vault root.
func (s *Store) Root() string {
	return s.root
}

// safePath resolves a vault-relative path and rejects any result that
// escapes the root (directory traversal).
func (s *Store) safePath(rel string) (string, error) {
	if rel == "" || rel == "." {
		return s.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("absolute paths not allowed: %s: %w", rel, domain.ErrInvalidInput)
	}
	joined := filepath.Join(s.root, cleaned)
	if !strings.HasPrefix(joined, s.root+string(os.PathSeparator)) && joined != s.root {
		return "", fmt.Errorf("path escapes vault root: %s: %w", rel, domain.ErrInvalidInput)
	}
	return joined, nil
}

// FileName derives a sanitized markdown file name from a document title.
func (s *Store) FileName(title string) string {
	name := sanitizeName(title)
	if name == "" {
		name = "Untitled"
	}
	return name + ".md"
}

// sanitizeName strips path-unsafe and markdown-link-hostile characters and
// collapses whitespace.
func sanitizeName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '#', '^', '[', ']':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if len(name) > maxNameLen {
		name = strings.TrimSpace(name[:maxNameLen])
	}
	return name
}

// Write stores the file atomically. Identical content is a no-op.
func (s *Store) Write(_ context.Context, path string, file domain.LocalFile) (*domain.WriteResult, error) {
	abs, err := s.safePath(path)
	if err != nil {
		return nil, err
	}

	content, err := composeFile(frontMatter{DocumentID: file.DocumentID, URI: file.URI}, file.Body)
	if err != nil {
		return nil, err
	}
	hash := hashBytes(content)

	if existing, err := os.ReadFile(abs); err == nil && hashBytes(existing) == hash {
		return &domain.WriteResult{Path: path, Hash: hash, Written: false}, nil
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".hypothesis-sync-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("commit file: %w", err)
	}

	return &domain.WriteResult{Path: path, Hash: hash, Written: true}, nil
}

// Read returns the file at path with parsed front matter.
func (s *Store) Read(_ context.Context, path string) (*domain.LocalFile, error) {
	abs, err := s.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	meta, body := splitFile(data)
	return &domain.LocalFile{
		Path:       path,
		DocumentID: meta.DocumentID,
		URI:        meta.URI,
		Body:       body,
		Hash:       hashBytes(data),
	}, nil
}

// Exists reports whether a file exists at path.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	abs, err := s.safePath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

// List walks folder and returns every markdown file with its parsed
// identifier.
func (s *Store) List(ctx context.Context, folder string) ([]domain.LocalFile, error) {
	base, err := s.safePath(folder)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}

	var out []domain.LocalFile
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		file, err := s.Read(ctx, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		out = append(out, *file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	return out, nil
}

// Rename moves a file within the vault.
func (s *Store) Rename(_ context.Context, oldPath, newPath string) error {
	oldAbs, err := s.safePath(oldPath)
	if err != nil {
		return err
	}
	newAbs, err := s.safePath(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("rename %s: %w", oldPath, err)
	}
	return nil
}

// Delete removes a file.
func (s *Store) Delete(_ context.Context, path string) error {
	abs, err := s.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Folders lists the vault's directories relative to the root. The root
// itself is reported as ".".
func (s *Store) Folders(ctx context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != s.root {
			return fs.SkipDir
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return out, nil
}

// hashBytes is the content hash used for drift detection.
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
