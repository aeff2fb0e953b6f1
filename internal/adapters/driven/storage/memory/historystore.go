package memory

import (
	"context"
	"sync"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	history *domain.SyncHistory

	// Commits counts Commit calls, letting tests assert checkpoint
	// behaviour.
	Commits int
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{history: domain.NewSyncHistory()}
}

// Load returns a copy of the current history.
func (s *HistoryStore) Load(_ context.Context) (*domain.SyncHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Clone(), nil
}

// Commit replaces the stored history.
func (s *HistoryStore) Commit(_ context.Context, history *domain.SyncHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history.Clone()
	s.Commits++
	return nil
}

// Reset clears the stored history.
func (s *HistoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = domain.NewSyncHistory()
	return nil
}
