package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

type memoryStore struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	entries  map[string][]Transaction // oldest first per wallet
}

// NewMemoryStore creates a concurrency-safe in-memory ledger store useful for
// unit tests and dev mode.
func NewMemoryStore() Store {
	return &memoryStore{
		balances: make(map[string]decimal.Decimal),
		entries:  make(map[string][]Transaction),
	}
}

func (s *memoryStore) Balance(_ context.Context, walletID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if balance, ok := s.balances[walletID]; ok {
		return balance, nil
	}
	return decimal.Zero, nil
}

func (s *memoryStore) ApplyEntry(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(tx)
	return nil
}

func (s *memoryStore) ApplyTransfer(_ context.Context, out, in Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(out)
	s.applyLocked(in)
	return nil
}

func (s *memoryStore) applyLocked(tx Transaction) {
	s.balances[tx.WalletID] = tx.BalanceAfter
	s.entries[tx.WalletID] = append(s.entries[tx.WalletID], tx)
}

func (s *memoryStore) ListByWallet(_ context.Context, walletID string, limit, offset int) ([]Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[walletID]
	total := int64(len(all))

	items := make([]Transaction, 0, limit)
	// Walk backwards for newest-first ordering.
	for i := len(all) - 1 - offset; i >= 0 && len(items) < limit; i-- {
		items = append(items, all[i])
	}
	return items, total, nil
}
