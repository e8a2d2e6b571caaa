package repository

import (
	"context"
	"database/sql"

	"dastyar-dashboard/internal/funds/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListAll returns every account ordered by sort_order then serial.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT serial, accounting_name, kind, balance, sort_order, created_at
		FROM accounts ORDER BY sort_order, serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// ListByKind returns accounts of one kind in sort order.
func (r *PostgresRepository) ListByKind(ctx context.Context, kind string) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT serial, accounting_name, kind, balance, sort_order, created_at
		FROM accounts WHERE kind = $1 ORDER BY sort_order, serial`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// Create persists the account and fills in the database-assigned serial.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (accounting_name, kind, balance, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING serial`,
		a.AccountingName, a.Kind, a.Balance, a.SortOrder, a.CreatedAt,
	).Scan(&a.Serial)
}

func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var out []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.Serial, &a.AccountingName, &a.Kind, &a.Balance, &a.SortOrder, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
