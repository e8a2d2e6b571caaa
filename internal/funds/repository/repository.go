package repository

import (
	"context"

	"dastyar-dashboard/internal/funds/domain"
)

// Repository defines persistence for bank and fund accounts.
type Repository interface {
	// ListAll returns every account ordered by sort_order then serial.
	ListAll(ctx context.Context) ([]domain.Account, error)
	// ListByKind returns accounts of one kind (bank or fund) in the same order.
	ListByKind(ctx context.Context, kind string) ([]domain.Account, error)
	// Create persists the account and assigns its serial.
	Create(ctx context.Context, a *domain.Account) error
}
