// Package devotp provides an in-memory store of plain OTP codes by phone number,
// used only when dev OTP mode is enabled (OTP_RETURN_TO_CLIENT). Not used in production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plain codes by phone number for dev-only retrieval.
type Store interface {
	// Put stores code for phoneNumber until expiresAt. Used when dispatching a code in dev mode.
	Put(ctx context.Context, phoneNumber, code string, expiresAt time.Time)
	// Get returns the code for phoneNumber if present and not expired. Returns ok false if missing or expired.
	Get(ctx context.Context, phoneNumber string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: time.Now().UTC,
	}
}

// Put stores code for phoneNumber until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, phoneNumber, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[phoneNumber] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for phoneNumber if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, phoneNumber string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[phoneNumber]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, phoneNumber)
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}
