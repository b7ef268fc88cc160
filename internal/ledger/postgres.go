package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists balances and ledger rows in PostgreSQL. Each apply
// call runs in a single database transaction so a balance update can never be
// observed without its ledger row.
//
// NUMERIC values are round-tripped as text to keep the store free of a
// pgx/decimal adapter dependency.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Balance returns the stored balance for the wallet, zero when absent.
func (s *PostgresStore) Balance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	var raw string
	err := s.db.QueryRow(ctx,
		`SELECT balance::text FROM wallet_balances WHERE wallet_id = $1`, walletID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// ApplyEntry writes the new balance and the ledger row in one transaction.
func (s *PostgresStore) ApplyEntry(ctx context.Context, entry Transaction) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := applyEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ApplyTransfer writes both legs and both balances in one transaction.
func (s *PostgresStore) ApplyTransfer(ctx context.Context, out, in Transaction) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := applyEntryTx(ctx, tx, out); err != nil {
		return err
	}
	if err := applyEntryTx(ctx, tx, in); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func applyEntryTx(ctx context.Context, tx pgx.Tx, entry Transaction) error {
	if _, err := tx.Exec(ctx, `INSERT INTO wallet_balances (wallet_id, balance, updated_at)
        VALUES ($1, $2::numeric, $3)
        ON CONFLICT (wallet_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
		entry.WalletID, entry.BalanceAfter.String(), entry.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO transactions
        (id, wallet_id, entry_type, amount, currency, balance_before, balance_after,
         reference, description, transfer_group, counterparty_id, created_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7::numeric, $8, $9,
                NULLIF($10, '')::uuid, NULLIF($11, '')::uuid, $12)`,
		entry.ID, entry.WalletID, entry.Type.String(), entry.Amount.String(), entry.Currency,
		entry.BalanceBefore.String(), entry.BalanceAfter.String(),
		entry.Reference, entry.Description, entry.TransferGroup, entry.Counterparty,
		entry.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByWallet returns the wallet's transactions newest-first by insertion
// order (the seq column), so same-timestamp postings keep their snapshot
// chain sequence.
func (s *PostgresStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]Transaction, int64, error) {
	var total int64
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `SELECT id, wallet_id, entry_type, amount::text, currency,
        balance_before::text, balance_after::text, reference, description,
        COALESCE(transfer_group::text, ''), COALESCE(counterparty_id::text, ''), created_at
        FROM transactions WHERE wallet_id = $1
        ORDER BY seq DESC
        LIMIT $2 OFFSET $3`, walletID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		var (
			entry     Transaction
			entryType string
			amount    string
			before    string
			after     string
			createdAt time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.WalletID, &entryType, &amount, &entry.Currency,
			&before, &after, &entry.Reference, &entry.Description,
			&entry.TransferGroup, &entry.Counterparty, &createdAt); err != nil {
			return nil, 0, err
		}
		if entry.Type, err = ParseEntryType(entryType); err != nil {
			return nil, 0, err
		}
		if entry.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, 0, err
		}
		if entry.BalanceBefore, err = decimal.NewFromString(before); err != nil {
			return nil, 0, err
		}
		if entry.BalanceAfter, err = decimal.NewFromString(after); err != nil {
			return nil, 0, err
		}
		entry.CreatedAt = createdAt.UTC()
		items = append(items, entry)
	}
	return items, total, rows.Err()
}
