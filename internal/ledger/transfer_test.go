package ledger

import (
	"context"
	"errors"
	"sync"
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

func testCurrencies() *currency.Service {
	return currency.NewService(currency.NewMemoryRepository(
		currency.Currency{Code: "USD", Name: "US Dollar", DecimalPlaces: 2, Active: true, IsDefault: true},
	))
}

func TestTransferMovesFundsAndLinksLegs(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	src, err := wallets.GetOrCreate(ctx, alice, "USD")
	if err != nil {
		t.Fatalf("provision source: %v", err)
	}
	SeedBalance(store, src.ID, decimal.NewFromInt(100))

	res, err := svc.Transfer(ctx, TransferInput{
		SourceUserID: alice,
		TargetUserID: bob,
		Amount:       decimal.RequireFromString("40.00"),
		Currency:     "USD",
		Reference:    "invoice-7",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if !res.Source.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected source balance 60, got %s", res.Source.Balance)
	}
	if !res.Target.Balance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected target balance 40, got %s", res.Target.Balance)
	}
	if res.TransferID == "" {
		t.Fatal("expected transfer reference")
	}

	srcPage, _ := svc.History(ctx, alice, "USD", 1, 10)
	dstPage, _ := svc.History(ctx, bob, "USD", 1, 10)
	if len(srcPage.Items) != 1 || len(dstPage.Items) != 1 {
		t.Fatalf("expected one leg per wallet, got %d and %d", len(srcPage.Items), len(dstPage.Items))
	}

	out := srcPage.Items[0]
	in := dstPage.Items[0]
	if out.Type != EntryTransferOut || in.Type != EntryTransferIn {
		t.Fatalf("unexpected leg types: %s / %s", out.Type, in.Type)
	}
	if out.TransferGroup != res.TransferID || in.TransferGroup != res.TransferID {
		t.Fatal("legs do not share the transfer group")
	}
	if out.Counterparty != bob || in.Counterparty != alice {
		t.Fatalf("unexpected counterparties: %s / %s", out.Counterparty, in.Counterparty)
	}
	if !out.Amount.Equal(in.Amount) {
		t.Fatalf("leg amounts differ: %s vs %s", out.Amount, in.Amount)
	}
}

func TestTransferConservesTotalBalance(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	src, _ := wallets.GetOrCreate(ctx, alice, "USD")
	dst, _ := wallets.GetOrCreate(ctx, bob, "USD")
	SeedBalance(store, src.ID, decimal.NewFromInt(75))
	SeedBalance(store, dst.ID, decimal.NewFromInt(25))

	if _, err := svc.Transfer(ctx, TransferInput{
		SourceUserID: alice, TargetUserID: bob,
		Amount: decimal.RequireFromString("13.37"), Currency: "USD",
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	srcBal, _ := store.Balance(ctx, src.ID)
	dstBal, _ := store.Balance(ctx, dst.ID)
	if !srcBal.Add(dstBal).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("funds not conserved: %s + %s", srcBal, dstBal)
	}
}

func TestTransferInsufficientFundsLeavesNoTrace(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	src, _ := wallets.GetOrCreate(ctx, alice, "USD")
	SeedBalance(store, src.ID, decimal.NewFromInt(10))

	_, err := svc.Transfer(ctx, TransferInput{
		SourceUserID: alice, TargetUserID: bob,
		Amount: decimal.NewFromInt(40), Currency: "USD",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	srcBal, _ := store.Balance(ctx, src.ID)
	if !srcBal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("source balance changed: %s", srcBal)
	}
	srcPage, _ := svc.History(ctx, alice, "USD", 1, 10)
	dstPage, _ := svc.History(ctx, bob, "USD", 1, 10)
	if srcPage.Total != 0 || dstPage.Total != 0 {
		t.Fatalf("expected no transactions, got %d and %d", srcPage.Total, dstPage.Total)
	}
}

func TestTransferToSameWalletRejected(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()
	alice := uuid.NewString()

	w, _ := wallets.GetOrCreate(ctx, alice, "USD")
	SeedBalance(store, w.ID, decimal.NewFromInt(50))

	_, err := svc.Transfer(ctx, TransferInput{
		SourceUserID: alice, TargetUserID: alice,
		Amount: decimal.NewFromInt(5), Currency: "USD",
	})
	if !errors.Is(err, ErrSameWalletTransfer) {
		t.Fatalf("expected same wallet error, got %v", err)
	}
}

type failingStore struct {
	Store
}

func (s failingStore) ApplyTransfer(context.Context, Transaction, Transaction) error {
	return errors.New("write failed after debit leg")
}

func TestTransferPersistenceFailureRollsBack(t *testing.T) {
	store := NewMemoryStore()
	wallets := wallet.NewService(wallet.NewMemoryStore(), testCurrencies(), store)
	svc := NewService(failingStore{store}, wallets, keylock.New(time.Second), events.NewLogPublisher(logging.Discard()), logging.Discard())

	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	src, _ := wallets.GetOrCreate(ctx, alice, "USD")
	SeedBalance(store, src.ID, decimal.NewFromInt(100))

	_, err := svc.Transfer(ctx, TransferInput{
		SourceUserID: alice, TargetUserID: bob,
		Amount: decimal.NewFromInt(40), Currency: "USD",
	})
	if err == nil {
		t.Fatal("expected persistence failure")
	}

	srcBal, _ := store.Balance(ctx, src.ID)
	if !srcBal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("source balance mutated despite failure: %s", srcBal)
	}
	items, total, _ := store.ListByWallet(ctx, src.ID, 10, 0)
	if total != 0 || len(items) != 0 {
		t.Fatalf("transactions written despite failure: %d", total)
	}
}

func TestOpposingTransfersDoNotDeadlock(t *testing.T) {
	svc, store, wallets := newTestService(t)
	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	src, _ := wallets.GetOrCreate(ctx, alice, "USD")
	dst, _ := wallets.GetOrCreate(ctx, bob, "USD")
	SeedBalance(store, src.ID, decimal.NewFromInt(1000))
	SeedBalance(store, dst.ID, decimal.NewFromInt(1000))

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := svc.Transfer(ctx, TransferInput{
				SourceUserID: alice, TargetUserID: bob,
				Amount: decimal.NewFromInt(1), Currency: "USD",
			}); err != nil {
				t.Errorf("alice->bob transfer %d: %v", i, err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := svc.Transfer(ctx, TransferInput{
				SourceUserID: bob, TargetUserID: alice,
				Amount: decimal.NewFromInt(1), Currency: "USD",
			}); err != nil {
				t.Errorf("bob->alice transfer %d: %v", i, err)
				return
			}
		}
	}()
	wg.Wait()

	srcBal, _ := store.Balance(ctx, src.ID)
	dstBal, _ := store.Balance(ctx, dst.ID)
	if !srcBal.Add(dstBal).Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("funds not conserved under contention: %s + %s", srcBal, dstBal)
	}
}

func TestLockTimeoutSurfacesAsRetryable(t *testing.T) {
	store := NewMemoryStore()
	wallets := wallet.NewService(wallet.NewMemoryStore(), testCurrencies(), store)
	locks := keylock.New(50 * time.Millisecond)
	svc := NewService(store, wallets, locks, events.NewLogPublisher(logging.Discard()), logging.Discard())

	ctx := context.Background()
	userID := uuid.NewString()
	w, _ := wallets.GetOrCreate(ctx, userID, "USD")

	release, err := locks.Acquire(ctx, w.ID)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	_, err = svc.Deposit(ctx, EntryInput{UserID: userID, Amount: decimal.NewFromInt(5), Currency: "USD"})
	if !errors.Is(err, keylock.ErrTimeout) {
		t.Fatalf("expected lock timeout, got %v", err)
	}
}
