package memory

import (
	"context"
	"slices"
	"sync"

	"bankstat/internal/core"
	"bankstat/internal/statement"
)

// Store keeps operations in process memory. It backs tests and the "memory"
// data backend.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var _ statement.Loader = (*Store)(nil)

func New(txs ...core.Transaction) *Store {
	s := &Store{}
	for _, tx := range txs {
		_ = s.Append(context.Background(), tx)
	}
	return s
}

// Append stores the operation. Operations without a status are rejected.
func (s *Store) Append(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return nil
}

// Replace swaps the stored operations for txs, dropping those without a status.
func (s *Store) Replace(txs []core.Transaction) int {
	kept := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Validate() == nil {
			kept = append(kept, tx)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = kept
	return len(kept)
}

// Load returns a copy of the stored operations in insertion order.
func (s *Store) Load(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
