package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soko-market/soko_pay/internal/currency"
)

// BalanceSource reports the ledger balance for a wallet. Wallets that have
// never been posted to report zero.
type BalanceSource interface {
	Balance(ctx context.Context, walletID string) (decimal.Decimal, error)
}

// Service exposes wallet lookup and provisioning.
type Service struct {
	store      Store
	currencies *currency.Service
	balances   BalanceSource
}

// NewService builds a wallet service instance.
func NewService(store Store, currencies *currency.Service, balances BalanceSource) *Service {
	return &Service{store: store, currencies: currencies, balances: balances}
}

// GetOrCreate returns the wallet for (userID, code), provisioning it with a
// zero balance on first access. An empty code resolves to the platform
// default currency. The call is idempotent under concurrent first access.
func (s *Service) GetOrCreate(ctx context.Context, userID, code string) (Wallet, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return Wallet{}, fmt.Errorf("invalid user id: %w", err)
	}

	cur, err := s.currencies.Resolve(ctx, code)
	if err != nil {
		return Wallet{}, err
	}

	w, ok, err := s.store.Find(ctx, userID, cur.Code)
	if err != nil {
		return Wallet{}, err
	}
	if ok {
		return w, nil
	}

	return s.store.Create(ctx, Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Currency:  cur.Code,
		CreatedAt: time.Now().UTC(),
	})
}

// Find resolves the currency and looks up the wallet without provisioning.
func (s *Service) Find(ctx context.Context, userID, code string) (Wallet, bool, error) {
	cur, err := s.currencies.Resolve(ctx, code)
	if err != nil {
		return Wallet{}, false, err
	}
	return s.store.Find(ctx, userID, cur.Code)
}

// Snapshot combines wallet metadata with the current ledger balance.
func (s *Service) Snapshot(ctx context.Context, w Wallet) (Snapshot, error) {
	balance, err := s.balances.Balance(ctx, w.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("wallet balance: %w", err)
	}
	return Snapshot{
		WalletID: w.ID,
		UserID:   w.UserID,
		Currency: w.Currency,
		Balance:  balance,
		AsOf:     time.Now().UTC(),
	}, nil
}

// Currencies exposes the registry collaborator for callers that validate
// amounts before posting.
func (s *Service) Currencies() *currency.Service {
	return s.currencies
}
