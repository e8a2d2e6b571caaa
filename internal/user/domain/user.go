package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Users are keyed by phone number; the first
// successful OTP login creates the row.
type User struct {
	ID           string
	PhoneNumber  string
	PasswordHash string // empty until the user sets a password; enables the password login path
	FCMToken     string // push-notification token; empty until registered
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.PhoneNumber == "" {
		return errors.New("phone number is required")
	}
	return nil
}
