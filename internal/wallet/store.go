package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists wallet metadata. Exactly one wallet may exist per
// (user, currency) pair; Create must be idempotent under concurrent
// first-access races and return the winning row.
type Store interface {
	Create(ctx context.Context, w Wallet) (Wallet, error)
	Find(ctx context.Context, userID, currency string) (Wallet, bool, error)
}

// PostgresStore stores wallets in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a wallet row. The unique constraint on (user_id, currency)
// absorbs creation races; the surviving row is read back and returned.
func (s *PostgresStore) Create(ctx context.Context, w Wallet) (Wallet, error) {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return Wallet{}, err
	}
	userID, err := uuid.Parse(w.UserID)
	if err != nil {
		return Wallet{}, err
	}

	_, err = s.db.Exec(ctx, `INSERT INTO wallets (id, user_id, currency, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, currency) DO NOTHING`,
		walletID, userID, w.Currency, w.CreatedAt.UTC())
	if err != nil {
		return Wallet{}, err
	}

	created, ok, err := s.Find(ctx, w.UserID, w.Currency)
	if err != nil {
		return Wallet{}, err
	}
	if !ok {
		return Wallet{}, errors.New("wallet row missing after insert")
	}
	return created, nil
}

// Find fetches wallet metadata by its natural key.
func (s *PostgresStore) Find(ctx context.Context, userID, currency string) (Wallet, bool, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, false, err
	}

	row := s.db.QueryRow(ctx, `SELECT id, user_id, currency, created_at
        FROM wallets WHERE user_id = $1 AND currency = $2`, ownerID, currency)

	var (
		w         Wallet
		id        uuid.UUID
		owner     uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &owner, &w.Currency, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, false, nil
		}
		return Wallet{}, false, err
	}
	w.ID = id.String()
	w.UserID = owner.String()
	w.CreatedAt = createdAt.UTC()
	return w, true, nil
}
