package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soko-market/soko_pay/internal/events"
	"github.com/soko-market/soko_pay/internal/wallet"
)

// TransferInput captures a wallet-to-wallet transfer request.
type TransferInput struct {
	SourceUserID string
	TargetUserID string
	Amount       decimal.Decimal
	Currency     string
	Reference    string
	Description  string
}

// TransferResult describes a completed transfer: the shared transfer group
// identifier and both wallets after the mutation.
type TransferResult struct {
	TransferID  string
	Amount      decimal.Decimal
	Currency    string
	Source      wallet.Snapshot
	Target      wallet.Snapshot
	CompletedAt time.Time
}

// Transfer moves funds between two users' wallets as one atomic unit: a
// TRANSFER_OUT leg on the source and a TRANSFER_IN leg on the target, linked
// by a fresh transfer group. Locks for the two wallets are always taken in
// ascending wallet-ID order, and no effect survives a failure of either leg.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	cur, err := s.wallets.Currencies().Resolve(ctx, in.Currency)
	if err != nil {
		return TransferResult{}, err
	}
	if err := cur.ValidateAmount(in.Amount); err != nil {
		return TransferResult{}, err
	}

	src, err := s.wallets.GetOrCreate(ctx, in.SourceUserID, cur.Code)
	if err != nil {
		return TransferResult{}, err
	}
	dst, err := s.wallets.GetOrCreate(ctx, in.TargetUserID, cur.Code)
	if err != nil {
		return TransferResult{}, err
	}
	if src.ID == dst.ID {
		return TransferResult{}, ErrSameWalletTransfer
	}

	result, err := s.transferLocked(ctx, src, dst, in, cur.Code)
	if err != nil {
		return TransferResult{}, err
	}

	// Publish after both locks are released; the event is advisory.
	s.publish(ctx, events.LedgerEvent{
		Kind:         events.KindTransfer,
		UserID:       src.UserID,
		Counterparty: dst.UserID,
		TransferID:   result.TransferID,
		Reference:    in.Reference,
		Amount:       result.Amount,
		Currency:     result.Currency,
		OccurredAt:   result.CompletedAt,
	})

	return result, nil
}

func (s *Service) transferLocked(ctx context.Context, src, dst wallet.Wallet, in TransferInput, code string) (TransferResult, error) {
	release, err := s.locks.AcquirePair(ctx, src.ID, dst.ID)
	if err != nil {
		return TransferResult{}, err
	}
	defer release()

	group := uuid.NewString()

	out, err := s.buildEntry(ctx, src, EntryTransferOut, in.Amount, code, in.Reference, in.Description, group, dst.UserID)
	if err != nil {
		return TransferResult{}, err
	}
	inLeg, err := s.buildEntry(ctx, dst, EntryTransferIn, in.Amount, code, in.Reference, in.Description, group, src.UserID)
	if err != nil {
		return TransferResult{}, err
	}
	inLeg.CreatedAt = out.CreatedAt

	if err := s.store.ApplyTransfer(ctx, out, inLeg); err != nil {
		return TransferResult{}, fmt.Errorf("persist transfer: %w", err)
	}

	return TransferResult{
		TransferID:  group,
		Amount:      in.Amount,
		Currency:    code,
		Source:      snapshotAfter(src, out),
		Target:      snapshotAfter(dst, inLeg),
		CompletedAt: out.CreatedAt,
	}, nil
}
