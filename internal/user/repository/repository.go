package repository

import (
	"context"

	"dastyar-dashboard/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	SetFCMToken(ctx context.Context, userID, fcmToken string) error
}
