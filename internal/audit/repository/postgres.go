package repository

import (
	"context"
	"database/sql"

	"dastyar-dashboard/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit event to the database. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	uid := sql.NullString{String: e.UserID, Valid: e.UserID != ""}
	meta := sql.NullString{String: e.Metadata, Valid: e.Metadata != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, phone, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, uid, e.Phone, e.Action, e.Resource, e.IP, meta, e.CreatedAt,
	)
	return err
}

// ListRecent returns audit events ordered newest first, paginated by limit and offset.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, phone, action, resource, ip, metadata, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		var uid, meta sql.NullString
		if err := rows.Scan(&e.ID, &uid, &e.Phone, &e.Action, &e.Resource, &e.IP, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = uid.String
		e.Metadata = meta.String
		out = append(out, &e)
	}
	return out, rows.Err()
}
