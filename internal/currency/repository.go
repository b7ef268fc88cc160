package currency

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to the currency registry.
type Repository interface {
	Find(ctx context.Context, code string) (Currency, bool, error)
	Default(ctx context.Context) (Currency, bool, error)
	List(ctx context.Context) ([]Currency, error)
}

// PostgresRepository reads the registry from PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed currency repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Find fetches a currency by code.
func (r *PostgresRepository) Find(ctx context.Context, code string) (Currency, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT code, name, decimal_places, active, is_default
        FROM currencies WHERE code = $1`, code)
	return scanCurrency(row)
}

// Default fetches the platform default currency, if one is configured.
func (r *PostgresRepository) Default(ctx context.Context) (Currency, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT code, name, decimal_places, active, is_default
        FROM currencies WHERE is_default AND active LIMIT 1`)
	return scanCurrency(row)
}

// List returns every registered currency.
func (r *PostgresRepository) List(ctx context.Context) ([]Currency, error) {
	rows, err := r.db.Query(ctx, `SELECT code, name, decimal_places, active, is_default
        FROM currencies ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var currencies []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.DecimalPlaces, &c.Active, &c.IsDefault); err != nil {
			return nil, err
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

func scanCurrency(row pgx.Row) (Currency, bool, error) {
	var c Currency
	if err := row.Scan(&c.Code, &c.Name, &c.DecimalPlaces, &c.Active, &c.IsDefault); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Currency{}, false, nil
		}
		return Currency{}, false, err
	}
	return c, true, nil
}
