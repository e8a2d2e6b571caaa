package repository

import (
	"context"
	"time"

	"dastyar-dashboard/internal/otp/domain"
)

// Repository defines persistence for OTP login challenges.
type Repository interface {
	// Upsert stores the challenge, replacing any existing challenge for the same phone number.
	Upsert(ctx context.Context, c *domain.Challenge) error
	GetByPhone(ctx context.Context, phoneNumber string) (*domain.Challenge, error)
	DeleteByPhone(ctx context.Context, phoneNumber string) error
}

// DefaultChallengeTTL is the default OTP challenge expiry.
const DefaultChallengeTTL = 10 * time.Minute

// ResendCooldown is how long after a dispatch the same phone must wait before a resend.
// Matches the SPA's 120-second countdown.
const ResendCooldown = 120 * time.Second
