package currency

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	currencies map[string]Currency
}

// NewMemoryRepository constructs an in-memory registry seeded with the given
// currencies. Useful for tests and dev mode.
func NewMemoryRepository(currencies ...Currency) Repository {
	repo := &memoryRepository{currencies: make(map[string]Currency, len(currencies))}
	for _, c := range currencies {
		repo.currencies[strings.ToUpper(c.Code)] = c
	}
	return repo
}

func (r *memoryRepository) Find(_ context.Context, code string) (Currency, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[code]
	return c, ok, nil
}

func (r *memoryRepository) Default(_ context.Context) (Currency, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.currencies {
		if c.IsDefault && c.Active {
			return c, true, nil
		}
	}
	return Currency{}, false, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
