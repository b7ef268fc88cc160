package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soko-market/soko_pay/internal/currency"
	"github.com/soko-market/soko_pay/internal/events"
	"github.com/soko-market/soko_pay/internal/keylock"
	"github.com/soko-market/soko_pay/internal/logging"
	"github.com/soko-market/soko_pay/internal/wallet"
)

func newTestService(t *testing.T) (*Service, Store, *wallet.Service) {
	t.Helper()
	registry := currency.NewMemoryRepository(
		currency.Currency{Code: "USD", Name: "US Dollar", DecimalPlaces: 2, Active: true, IsDefault: true},
		currency.Currency{Code: "EUR", Name: "Euro", DecimalPlaces: 2, Active: true},
	)
	currencySvc := currency.NewService(registry)
	store := NewMemoryStore()
	walletSvc := wallet.NewService(wallet.NewMemoryStore(), currencySvc, store)
	svc := NewService(store, walletSvc, keylock.New(time.Second), events.NewLogPublisher(logging.Discard()), logging.Discard())
	return svc, store, walletSvc
}

func TestDepositIntoFreshWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	receipt, err := svc.Deposit(ctx, EntryInput{
		UserID:      userID,
		Amount:      decimal.RequireFromString("100.00"),
		Currency:    "USD",
		Reference:   "order-1",
		Description: "first top up",
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if !receipt.Wallet.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", receipt.Wallet.Balance)
	}
	entry := receipt.Entry
	if entry.Type != EntryDeposit {
		t.Fatalf("expected DEPOSIT entry, got %s", entry.Type)
	}
	if !entry.BalanceBefore.IsZero() || !entry.BalanceAfter.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected snapshots: before=%s after=%s", entry.BalanceBefore, entry.BalanceAfter)
	}
	if entry.Reference != "order-1" {
		t.Fatalf("expected reference carried through, got %q", entry.Reference)
	}
}

func TestCreditSaleUsesDistinctType(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	receipt, err := svc.CreditSale(ctx, EntryInput{
		UserID:   uuid.NewString(),
		Amount:   decimal.RequireFromString("19.99"),
		Currency: "",
	})
	if err != nil {
		t.Fatalf("credit sale: %v", err)
	}
	if receipt.Entry.Type != EntrySaleCredit {
		t.Fatalf("expected SALE_CREDIT entry, got %s", receipt.Entry.Type)
	}
	if receipt.Wallet.Currency != "USD" {
		t.Fatalf("expected default currency USD, got %s", receipt.Wallet.Currency)
	}
}

func TestDepositEntryConsistencyAcrossSequence(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	amounts := []string{"10.00", "25.50", "0.01"}
	for _, a := range amounts {
		if _, err := svc.Deposit(ctx, EntryInput{UserID: userID, Amount: decimal.RequireFromString(a), Currency: "USD"}); err != nil {
			t.Fatalf("deposit %s: %v", a, err)
		}
	}

	page, err := svc.History(ctx, userID, "USD", 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(page.Items))
	}
	for _, tx := range page.Items {
		diff := tx.BalanceAfter.Sub(tx.BalanceBefore)
		if !diff.Equal(tx.Type.Signed(tx.Amount)) {
			t.Fatalf("entry %s inconsistent: before=%s after=%s amount=%s", tx.ID, tx.BalanceBefore, tx.BalanceAfter, tx.Amount)
		}
	}
	// Newest first: balances chain downward through the page.
	if !page.Items[0].BalanceAfter.Equal(decimal.RequireFromString("35.51")) {
		t.Fatalf("expected latest balance 35.51, got %s", page.Items[0].BalanceAfter)
	}
}

func TestApplyRejectsCurrencyMismatch(t *testing.T) {
	svc, _, wallets := newTestService(t)
	ctx := context.Background()

	w, err := wallets.GetOrCreate(ctx, uuid.NewString(), "USD")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	_, err = svc.Apply(ctx, w, EntryDeposit, decimal.NewFromInt(10), "EUR", "", "")
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected currency mismatch, got %v", err)
	}

	balance, _ := svc.store.Balance(ctx, w.ID)
	if !balance.IsZero() {
		t.Fatalf("wallet mutated on mismatch: %s", balance)
	}
}

func TestApplyRejectsOverdraft(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()

	w, err := wallets.GetOrCreate(ctx, uuid.NewString(), "USD")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	SeedBalance(store, w.ID, decimal.NewFromInt(10))

	_, err = svc.Apply(ctx, w, EntryTransferOut, decimal.NewFromInt(40), "USD", "", "")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, _ := store.Balance(ctx, w.ID)
	if !balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance changed after failed debit: %s", balance)
	}
	page, _ := svc.History(ctx, w.UserID, "USD", 1, 10)
	if page.Total != 0 {
		t.Fatalf("expected no transactions, got %d", page.Total)
	}
}

func TestDepositRejectsExcessScale(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Deposit(context.Background(), EntryInput{
		UserID:   uuid.NewString(),
		Amount:   decimal.RequireFromString("1.001"),
		Currency: "USD",
	})
	if !errors.Is(err, currency.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestHistoryWithoutWalletReturnsEmptyPage(t *testing.T) {
	svc, _, _ := newTestService(t)

	page, err := svc.History(context.Background(), uuid.NewString(), "USD", 1, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
	if page.Items == nil {
		t.Fatal("expected non-nil items slice")
	}
}

func TestConcurrentDepositsLinearize(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	w, err := wallets.GetOrCreate(ctx, userID, "USD")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	const workers = 20
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := svc.Deposit(ctx, EntryInput{UserID: userID, Amount: decimal.NewFromInt(5), Currency: "USD"})
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent deposit: %v", err)
		}
	}

	balance, _ := store.Balance(ctx, w.ID)
	if !balance.Equal(decimal.NewFromInt(workers * 5)) {
		t.Fatalf("expected balance %d, got %s", workers*5, balance)
	}

	page, err := svc.History(ctx, userID, "USD", 1, 100)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	// balanceBefore/balanceAfter must chain with no gaps across the order.
	for i := 0; i+1 < len(page.Items); i++ {
		if !page.Items[i].BalanceBefore.Equal(page.Items[i+1].BalanceAfter) {
			t.Fatalf("snapshot chain broken between %d and %d", i, i+1)
		}
	}
}
