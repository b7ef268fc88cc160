package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store persists wallet balances together with their ledger rows. Both
// ApplyEntry and ApplyTransfer are atomic: the balance update and the
// transaction rows land together or not at all. Serialization of concurrent
// mutations is the recorder's job, not the store's.
type Store interface {
	// Balance returns the current balance for a wallet, zero if the wallet
	// has never been posted to.
	Balance(ctx context.Context, walletID string) (decimal.Decimal, error)

	// ApplyEntry sets the wallet balance to tx.BalanceAfter and appends tx.
	ApplyEntry(ctx context.Context, tx Transaction) error

	// ApplyTransfer applies both legs of a transfer as one atomic unit.
	ApplyTransfer(ctx context.Context, out, in Transaction) error

	// ListByWallet returns transactions newest-first with the total count.
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]Transaction, int64, error)
}
