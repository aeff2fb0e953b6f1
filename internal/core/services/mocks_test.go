package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	stdsync "sync"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// --- Mock implementations shared across service tests ---

// mockClient implements driven.AnnotationClient with scripted responses.
type mockClient struct {
	mu stdsync.Mutex

	profile    string
	profileErr error

	// pages are returned in order by FetchSince; NextPageToken chains them.
	pages []*driven.AnnotationPage

	// fetchErrs are consumed one per FetchSince call before pages are served.
	fetchErrs []error

	// docs maps URI to the full annotation set FetchDocument returns.
	docs   map[string][]domain.Annotation
	docErr error

	// blockFetch, when set, makes FetchSince wait until it is closed.
	blockFetch chan struct{}

	fetchCalls    int
	documentCalls int
}

func (m *mockClient) Profile(_ context.Context) (string, error) {
	if m.profileErr != nil {
		return "", m.profileErr
	}
	return m.profile, nil
}

func (m *mockClient) FetchSince(ctx context.Context, _, pageToken string) (*driven.AnnotationPage, error) {
	if m.blockFetch != nil {
		select {
		case <-m.blockFetch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++

	if len(m.fetchErrs) > 0 {
		err := m.fetchErrs[0]
		m.fetchErrs = m.fetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	idx := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "%d", &idx)
	}
	if idx >= len(m.pages) {
		return &driven.AnnotationPage{}, nil
	}
	return m.pages[idx], nil
}

func (m *mockClient) FetchDocument(_ context.Context, uri string) ([]domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documentCalls++
	if m.docErr != nil {
		return nil, m.docErr
	}
	return m.docs[uri], nil
}

// mockFactory implements driven.ClientFactory around a single client.
type mockFactory struct {
	client    driven.AnnotationClient
	createErr error
}

func (f *mockFactory) Create(_ context.Context, _ domain.Settings) (driven.AnnotationClient, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.client, nil
}

// mockVault implements driven.VaultStore in memory.
type mockVault struct {
	mu    stdsync.Mutex
	files map[string]domain.LocalFile

	// writeErrs fails writes to specific paths.
	writeErrs map[string]error

	// diskWrites counts writes that actually changed content.
	diskWrites int
}

func newMockVault() *mockVault {
	return &mockVault{
		files:     make(map[string]domain.LocalFile),
		writeErrs: make(map[string]error),
	}
}

func (v *mockVault) FileName(title string) string {
	if title == "" {
		title = "Untitled"
	}
	return title + ".md"
}

func (v *mockVault) Write(_ context.Context, p string, file domain.LocalFile) (*domain.WriteResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.writeErrs[p]; err != nil {
		return nil, err
	}

	hash := contentHash(file)
	if existing, ok := v.files[p]; ok && existing.Hash == hash {
		return &domain.WriteResult{Path: p, Hash: hash, Written: false}, nil
	}

	file.Path = p
	file.Hash = hash
	v.files[p] = file
	v.diskWrites++
	return &domain.WriteResult{Path: p, Hash: hash, Written: true}, nil
}

func (v *mockVault) Read(_ context.Context, p string) (*domain.LocalFile, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	file, ok := v.files[p]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

func (v *mockVault) Exists(_ context.Context, p string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.files[p]
	return ok, nil
}

func (v *mockVault) List(_ context.Context, folder string) ([]domain.LocalFile, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []domain.LocalFile
	for p, file := range v.files {
		if folder == "" || strings.HasPrefix(p, folder+"/") {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (v *mockVault) Rename(_ context.Context, oldPath, newPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	file, ok := v.files[oldPath]
	if !ok {
		return domain.ErrNotFound
	}
	delete(v.files, oldPath)
	file.Path = newPath
	v.files[newPath] = file
	return nil
}

func (v *mockVault) Delete(_ context.Context, p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.files, p)
	return nil
}

func (v *mockVault) Folders(_ context.Context) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	seen := map[string]bool{".": true}
	for p := range v.files {
		if dir := path.Dir(p); dir != "" {
			seen[dir] = true
		}
	}
	folders := make([]string, 0, len(seen))
	for dir := range seen {
		folders = append(folders, dir)
	}
	sort.Strings(folders)
	return folders, nil
}

func contentHash(file domain.LocalFile) string {
	sum := sha256.Sum256([]byte(file.DocumentID + "\x00" + file.URI + "\x00" + file.Body))
	return hex.EncodeToString(sum[:])
}
