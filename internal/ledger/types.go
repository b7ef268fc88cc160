package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when a debit would drive a wallet balance
	// negative. The wallet is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCurrencyMismatch occurs when a posting's currency does not match the
	// wallet's fixed currency.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrSameWalletTransfer occurs when a transfer's source and target resolve
	// to the same wallet.
	ErrSameWalletTransfer = errors.New("transfer source and target are the same wallet")
)

// EntryType is the closed set of ledger posting kinds. The sign of a posting
// is implied by its type; amounts are always positive magnitudes.
type EntryType int

const (
	EntryDeposit EntryType = iota
	EntrySaleCredit
	EntryTransferOut
	EntryTransferIn
)

var entryTypeNames = map[EntryType]string{
	EntryDeposit:     "DEPOSIT",
	EntrySaleCredit:  "SALE_CREDIT",
	EntryTransferOut: "TRANSFER_OUT",
	EntryTransferIn:  "TRANSFER_IN",
}

// String returns the storage/wire name of the entry type.
func (t EntryType) String() string {
	if name, ok := entryTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EntryType(%d)", int(t))
}

// ParseEntryType maps a stored name back to its entry type.
func ParseEntryType(name string) (EntryType, error) {
	for t, n := range entryTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown entry type %q", name)
}

// Credit reports whether the type adds to the wallet balance.
func (t EntryType) Credit() bool {
	switch t {
	case EntryDeposit, EntrySaleCredit, EntryTransferIn:
		return true
	default:
		return false
	}
}

// Signed applies the type's effect to a positive magnitude.
func (t EntryType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.Credit() {
		return amount
	}
	return amount.Neg()
}

// Transaction is an immutable ledger entry recording a single balance
// mutation. TransferGroup and Counterparty are set on transfer legs only;
// exactly two transactions share a transfer group.
type Transaction struct {
	ID            string
	WalletID      string
	Type          EntryType
	Amount        decimal.Decimal
	Currency      string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reference     string
	Description   string
	TransferGroup string
	Counterparty  string
	CreatedAt     time.Time
}

// Page is one slice of a wallet's transaction history, newest first.
type Page struct {
	Items []Transaction
	Page  int
	Size  int
	Total int64
}
