// Package domain holds fund and bank account types and balance reports.
package domain

import (
	"errors"
	"time"
)

// Account kinds.
const (
	KindBank = "bank"
	KindFund = "fund"
)

// Account is a stored bank or fund account with its current balance in toman.
type Account struct {
	Serial         int64
	AccountingName string
	Kind           string
	Balance        float64
	SortOrder      int
	CreatedAt      time.Time
}

// Validate checks required fields.
func (a *Account) Validate() error {
	if a.AccountingName == "" {
		return errors.New("accounting name is required")
	}
	if a.Kind != KindBank && a.Kind != KindFund {
		return errors.New("kind must be bank or fund")
	}
	return nil
}
