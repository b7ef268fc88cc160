package currency

import (
	"context"
	"fmt"
	"strings"
)

// Service resolves and validates currencies against the registry.
type Service struct {
	repo Repository
}

// NewService builds a currency service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve normalizes a currency code and returns the matching active currency.
// An empty code resolves to the platform default.
func (s *Service) Resolve(ctx context.Context, code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if code == "" {
		c, ok, err := s.repo.Default(ctx)
		if err != nil {
			return Currency{}, fmt.Errorf("resolve default currency: %w", err)
		}
		if !ok {
			return Currency{}, ErrUnavailable
		}
		return c, nil
	}

	c, ok, err := s.repo.Find(ctx, code)
	if err != nil {
		return Currency{}, fmt.Errorf("resolve currency %s: %w", code, err)
	}
	if !ok || !c.Active {
		return Currency{}, ErrUnavailable
	}
	return c, nil
}

// List returns all registered currencies.
func (s *Service) List(ctx context.Context) ([]Currency, error) {
	return s.repo.List(ctx)
}
