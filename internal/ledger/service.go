package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soko-market/soko_pay/internal/currency"
	"github.com/soko-market/soko_pay/internal/events"
	"github.com/soko-market/soko_pay/internal/keylock"
	"github.com/soko-market/soko_pay/internal/wallet"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the sole writer of wallet balances. Every mutation passes through
// it: it serializes access per wallet, computes balance snapshots, and hands
// the store an atomic balance+row unit.
type Service struct {
	store     Store
	wallets   *wallet.Service
	locks     *keylock.KeyLock
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService builds the ledger recorder.
func NewService(store Store, wallets *wallet.Service, locks *keylock.KeyLock, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, wallets: wallets, locks: locks, publisher: publisher, logger: logger}
}

// EntryInput captures a single-wallet posting request. Amount is a positive
// magnitude; the sign is implied by the operation. Reference is a
// caller-supplied correlation key, recorded verbatim and not deduplicated.
type EntryInput struct {
	UserID      string
	Amount      decimal.Decimal
	Currency    string
	Reference   string
	Description string
}

// Receipt is the outcome of a single-wallet posting.
type Receipt struct {
	Wallet wallet.Snapshot
	Entry  Transaction
}

// Deposit credits funds into the user's wallet, provisioning it if needed.
func (s *Service) Deposit(ctx context.Context, in EntryInput) (Receipt, error) {
	return s.record(ctx, in, EntryDeposit, events.KindDeposit)
}

// CreditSale credits sale proceeds into the user's wallet. It is a distinct
// entry type so reporting can separate funding sources without string parsing.
func (s *Service) CreditSale(ctx context.Context, in EntryInput) (Receipt, error) {
	return s.record(ctx, in, EntrySaleCredit, events.KindSaleCredit)
}

func (s *Service) record(ctx context.Context, in EntryInput, typ EntryType, kind string) (Receipt, error) {
	cur, err := s.wallets.Currencies().Resolve(ctx, in.Currency)
	if err != nil {
		return Receipt{}, err
	}
	if err := cur.ValidateAmount(in.Amount); err != nil {
		return Receipt{}, err
	}

	w, err := s.wallets.GetOrCreate(ctx, in.UserID, cur.Code)
	if err != nil {
		return Receipt{}, err
	}

	entry, err := s.Apply(ctx, w, typ, in.Amount, cur.Code, in.Reference, in.Description)
	if err != nil {
		return Receipt{}, err
	}

	s.publish(ctx, events.LedgerEvent{
		Kind:       kind,
		UserID:     w.UserID,
		Reference:  entry.Reference,
		Amount:     entry.Amount,
		Currency:   entry.Currency,
		OccurredAt: entry.CreatedAt,
	})

	return Receipt{Wallet: snapshotAfter(w, entry), Entry: entry}, nil
}

// Apply posts a single entry to the wallet under its exclusive lock. Credit
// types add the amount, debit types subtract it; a debit that would drive the
// balance negative fails with ErrInsufficientFunds and writes nothing.
func (s *Service) Apply(ctx context.Context, w wallet.Wallet, typ EntryType, amount decimal.Decimal, code, reference, description string) (Transaction, error) {
	release, err := s.locks.Acquire(ctx, w.ID)
	if err != nil {
		return Transaction{}, err
	}
	defer release()

	entry, err := s.buildEntry(ctx, w, typ, amount, code, reference, description, "", "")
	if err != nil {
		return Transaction{}, err
	}
	if err := s.store.ApplyEntry(ctx, entry); err != nil {
		return Transaction{}, fmt.Errorf("persist entry: %w", err)
	}
	return entry, nil
}

// buildEntry validates the posting and computes the balance snapshots. The
// caller must hold the wallet lock.
func (s *Service) buildEntry(ctx context.Context, w wallet.Wallet, typ EntryType, amount decimal.Decimal, code, reference, description, group, counterparty string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, currency.ErrInvalidAmount
	}
	if code != w.Currency {
		return Transaction{}, ErrCurrencyMismatch
	}

	before, err := s.store.Balance(ctx, w.ID)
	if err != nil {
		return Transaction{}, fmt.Errorf("read balance: %w", err)
	}
	after := before.Add(typ.Signed(amount))
	if !typ.Credit() && after.IsNegative() {
		return Transaction{}, ErrInsufficientFunds
	}

	return Transaction{
		ID:            uuid.NewString(),
		WalletID:      w.ID,
		Type:          typ,
		Amount:        amount,
		Currency:      w.Currency,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     reference,
		Description:   description,
		TransferGroup: group,
		Counterparty:  counterparty,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// History returns the wallet's transactions newest-first. A user without a
// wallet for the currency gets an empty page, never an error.
func (s *Service) History(ctx context.Context, userID, code string, page, size int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	w, ok, err := s.wallets.Find(ctx, userID, code)
	if err != nil {
		return Page{}, err
	}
	if !ok {
		return Page{Items: []Transaction{}, Page: page, Size: size}, nil
	}

	items, total, err := s.store.ListByWallet(ctx, w.ID, size, (page-1)*size)
	if err != nil {
		return Page{}, fmt.Errorf("list transactions: %w", err)
	}
	return Page{Items: items, Page: page, Size: size, Total: total}, nil
}

func (s *Service) publish(ctx context.Context, event events.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish ledger event", "kind", event.Kind, "error", err)
	}
}

func snapshotAfter(w wallet.Wallet, entry Transaction) wallet.Snapshot {
	return wallet.Snapshot{
		WalletID: w.ID,
		UserID:   w.UserID,
		Currency: w.Currency,
		Balance:  entry.BalanceAfter,
		AsOf:     entry.CreatedAt,
	}
}
