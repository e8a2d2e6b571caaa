package repository

import (
	"context"

	"dastyar-dashboard/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error)
}
