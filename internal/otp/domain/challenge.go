package domain

import "time"

// Challenge represents a pending OTP login challenge (stored in otp_challenges table).
// At most one challenge exists per phone number; a resend replaces it.
type Challenge struct {
	ID          string
	PhoneNumber string
	CodeHash    string
	ExpiresAt   time.Time
	ResendAt    time.Time // next time a new code may be dispatched for this phone
	CreatedAt   time.Time
}

// Expired reports whether the challenge can no longer be verified at the given time.
func (c *Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// ResendAllowed reports whether a new code may be dispatched at the given time.
func (c *Challenge) ResendAllowed(now time.Time) bool {
	return !c.ResendAt.After(now)
}
