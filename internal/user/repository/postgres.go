package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dastyar-dashboard/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, phone_number, password_hash, fcm_token, created_at, updated_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByPhone returns the user with the given phone number, or nil if not found.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, phone_number, password_hash, fcm_token, created_at, updated_at
		FROM users WHERE phone_number = $1`, phoneNumber)
	return scanUser(row)
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, phone_number, password_hash, fcm_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.PhoneNumber, u.PasswordHash, u.FCMToken, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// SetFCMToken stores the push-notification token for the user. Last write wins.
func (r *PostgresRepository) SetFCMToken(ctx context.Context, userID, fcmToken string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET fcm_token = $2, updated_at = $3 WHERE id = $1`,
		userID, fcmToken, time.Now().UTC(),
	)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.PhoneNumber, &u.PasswordHash, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
