package wallet

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	storage map[string]Wallet // keyed by userID|currency
}

// NewMemoryStore constructs an in-memory store for tests and dev mode.
func NewMemoryStore() Store {
	return &memoryStore{storage: make(map[string]Wallet)}
}

func naturalKey(userID, currency string) string {
	return userID + "|" + currency
}

func (s *memoryStore) Create(_ context.Context, w Wallet) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := naturalKey(w.UserID, w.Currency)
	if existing, ok := s.storage[key]; ok {
		return existing, nil
	}
	s.storage[key] = w
	return w, nil
}

func (s *memoryStore) Find(_ context.Context, userID, currency string) (Wallet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.storage[naturalKey(userID, currency)]
	return w, ok, nil
}
