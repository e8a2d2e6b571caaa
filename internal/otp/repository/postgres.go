package repository

import (
	"context"
	"database/sql"
	"errors"

	"dastyar-dashboard/internal/otp/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OTP challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert persists the challenge, replacing any previous challenge for the phone number.
// The challenge must have ID set.
func (r *PostgresRepository) Upsert(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_challenges (id, phone_number, code_hash, expires_at, resend_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone_number) DO UPDATE SET
			id = EXCLUDED.id,
			code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at,
			resend_at = EXCLUDED.resend_at,
			created_at = EXCLUDED.created_at`,
		c.ID, c.PhoneNumber, c.CodeHash, c.ExpiresAt, c.ResendAt, c.CreatedAt,
	)
	return err
}

// GetByPhone returns the challenge for the phone number, or nil if not found.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phoneNumber string) (*domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, phone_number, code_hash, expires_at, resend_at, created_at
		FROM otp_challenges WHERE phone_number = $1`, phoneNumber)
	var c domain.Challenge
	err := row.Scan(&c.ID, &c.PhoneNumber, &c.CodeHash, &c.ExpiresAt, &c.ResendAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// DeleteByPhone removes the challenge for the phone number.
func (r *PostgresRepository) DeleteByPhone(ctx context.Context, phoneNumber string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE phone_number = $1`, phoneNumber)
	return err
}
