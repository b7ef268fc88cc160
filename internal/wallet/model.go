package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the per-user, per-currency balance record. The currency is fixed
// at creation; the authoritative balance lives with the ledger store and is
// only ever mutated through ledger postings.
type Wallet struct {
	ID        string
	UserID    string
	Currency  string
	CreatedAt time.Time
}

// Snapshot combines wallet metadata with its balance at a point in time.
type Snapshot struct {
	WalletID string
	UserID   string
	Currency string
	Balance  decimal.Decimal
	AsOf     time.Time
}
