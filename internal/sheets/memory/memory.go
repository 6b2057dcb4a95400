package memory

import (
	"context"
	"fmt"
	"sync"

	"lifeos/internal/core"
)

// Store keeps mirrored entries in process. It backs the worker when no
// spreadsheet is configured and in tests.
type Store struct {
	mu    sync.Mutex
	items []core.DomainEntry
}

func New() *Store {
	return &Store{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.DomainEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Entries returns the appended entries in order.
func (s *Store) Entries() []core.DomainEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DomainEntry(nil), s.items...)
}
