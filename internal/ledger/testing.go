package ledger

import (
	"github.com/shopspring/decimal"
)

// SeedBalance is a test helper that sets a wallet balance directly when using
// the in-memory store, bypassing the recorder.
func SeedBalance(s Store, walletID string, balance decimal.Decimal) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[walletID] = balance
	}
}
