package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// KindDeposit marks a completed deposit credit.
	KindDeposit = "wallet.deposit"
	// KindSaleCredit marks a completed sale credit.
	KindSaleCredit = "wallet.sale_credit"
	// KindTransfer marks a completed wallet-to-wallet transfer.
	KindTransfer = "wallet.transfer"
)

// LedgerEvent describes a completed ledger operation for downstream systems.
type LedgerEvent struct {
	Kind         string          `json:"kind"`
	UserID       string          `json:"user_id"`
	Counterparty string          `json:"counterparty,omitempty"`
	TransferID   string          `json:"transfer_id,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Publisher delivers ledger events to downstream systems. Publishing happens
// after the mutation has committed and outside any wallet lock; failures are
// logged, never surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

// LogPublisher writes events to the structured logger. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a logging publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish writes the event to the structured logger.
func (p *LogPublisher) Publish(_ context.Context, event LedgerEvent) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("ledger event",
		"kind", event.Kind,
		"user_id", event.UserID,
		"counterparty", event.Counterparty,
		"transfer_id", event.TransferID,
		"amount", event.Amount.String(),
		"currency", event.Currency,
	)
	return nil
}
